package proxy_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"

	"github.com/jarcoal/httpmock"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/mock/gomock"

	"github.com/remote-vehicle/vehicle-gateway/mocks"
	"github.com/remote-vehicle/vehicle-gateway/pkg/account"
	"github.com/remote-vehicle/vehicle-gateway/pkg/maps"
	"github.com/remote-vehicle/vehicle-gateway/pkg/protocol"
	"github.com/remote-vehicle/vehicle-gateway/pkg/proxy"
	"github.com/remote-vehicle/vehicle-gateway/pkg/vehicle"
)

const (
	vid      = "JM3KFBDM1P0000001"
	username = "driver@example.com"
	password = "hunter2"
)

func redirectTo(target string) httpmock.Responder {
	return func(req *http.Request) (*http.Response, error) {
		return &http.Response{
			Status:     "302 Found",
			StatusCode: http.StatusFound,
			Header:     http.Header{"Location": []string{target}},
			Body:       http.NoBody,
			Request:    req,
		}, nil
	}
}

var _ = Describe("Proxy", func() {
	var (
		ctrl    *gomock.Controller
		p       *proxy.Proxy
		dialer  *mocks.Dialer
		session *mocks.Session
	)

	sendRequest := func(method, path string, body []byte) *httptest.ResponseRecorder {
		req := httptest.NewRequest(method, path, bytes.NewReader(body))
		rr := httptest.NewRecorder()
		p.ServeHTTP(rr, req)
		return rr
	}

	post := func(path string, params map[string]interface{}) *httptest.ResponseRecorder {
		body, err := json.Marshal(params)
		Expect(err).NotTo(HaveOccurred())
		return sendRequest(http.MethodPost, path, body)
	}

	// expectSession expects exactly one session to be opened in region and exactly one close.
	expectSession := func(region protocol.Region) {
		dialer.EXPECT().Dial(gomock.Any(), username, password, region).Return(session, nil).Times(1)
		session.EXPECT().Close(gomock.Any()).Return(nil).Times(1)
	}

	BeforeEach(func() {
		ctrl = gomock.NewController(GinkgoT())
		dialer = mocks.NewDialer(ctrl)
		session = mocks.NewSession(ctrl)

		acct, err := account.New(username, password, "MNAO")
		Expect(err).NotTo(HaveOccurred())

		client := &http.Client{}
		httpmock.ActivateNonDefault(client)
		DeferCleanup(httpmock.DeactivateAndReset)

		p = proxy.New(proxy.NewDispatcher(acct, dialer), &maps.Extractor{Client: client})
		DeferCleanup(func() {
			ctrl.Finish()
		})
	})

	Context("routing", func() {
		It("returns not found for unknown paths", func() {
			rr := sendRequest(http.MethodPost, "/remoteBoombox", nil)
			Expect(rr.Code).To(Equal(http.StatusNotFound))
		})

		It("rejects the wrong method", func() {
			rr := sendRequest(http.MethodGet, "/lockDoors", nil)
			Expect(rr.Code).To(Equal(http.StatusMethodNotAllowed))

			rr = sendRequest(http.MethodPost, "/vehicles_html", nil)
			Expect(rr.Code).To(Equal(http.StatusMethodNotAllowed))
		})

		It("reports health", func() {
			rr := sendRequest(http.MethodGet, "/healthz", nil)
			Expect(rr.Code).To(Equal(http.StatusOK))
			Expect(rr.Body.String()).To(Equal("ok"))
		})

		It("exports metrics", func() {
			rr := sendRequest(http.MethodGet, "/metrics", nil)
			Expect(rr.Code).To(Equal(http.StatusOK))
			Expect(rr.Body.String()).To(ContainSubstring("vehicle_gateway_sessions_opened_total"))
		})
	})

	Context("request bodies", func() {
		It("rejects malformed JSON without opening a session", func() {
			rr := sendRequest(http.MethodPost, "/lockDoors", []byte(`{"vid": `))
			Expect(rr.Code).To(Equal(http.StatusBadRequest))
		})

		It("rejects oversized bodies", func() {
			body := `{"vid": "` + strings.Repeat("x", 5000) + `"}`
			rr := sendRequest(http.MethodPost, "/lockDoors", []byte(body))
			Expect(rr.Code).To(Equal(http.StatusBadRequest))
		})

		It("treats an empty body as empty parameters", func() {
			expectSession(protocol.RegionNorthAmerica)
			session.EXPECT().ListVehicles(gomock.Any()).Return([]vehicle.Summary{}, nil)

			rr := sendRequest(http.MethodPost, "/vehicles", nil)
			Expect(rr.Code).To(Equal(http.StatusOK))
			Expect(rr.Body.String()).To(MatchJSON(`[]`))
		})

		It("requires a vehicle id", func() {
			rr := post("/unlockDoors", map[string]interface{}{"region": "MNAO"})
			Expect(rr.Code).To(Equal(http.StatusBadRequest))
			Expect(rr.Body.String()).To(ContainSubstring("missing vid param"))
		})
	})

	Context("region resolution", func() {
		It("uses the configured default when the request omits a region", func() {
			expectSession(protocol.RegionNorthAmerica)
			session.EXPECT().LockDoors(gomock.Any(), vid).Return(nil)

			rr := post("/lockDoors", map[string]interface{}{"vid": vid})
			Expect(rr.Code).To(Equal(http.StatusOK))
		})

		It("uses the default for an empty region", func() {
			expectSession(protocol.RegionNorthAmerica)
			session.EXPECT().LockDoors(gomock.Any(), vid).Return(nil)

			rr := post("/lockDoors", map[string]interface{}{"vid": vid, "region": ""})
			Expect(rr.Code).To(Equal(http.StatusOK))
		})

		It("uses the requested region", func() {
			expectSession(protocol.RegionJapan)
			session.EXPECT().LockDoors(gomock.Any(), vid).Return(nil)

			rr := post("/lockDoors", map[string]interface{}{"vid": vid, "region": "MJO"})
			Expect(rr.Code).To(Equal(http.StatusOK))
		})

		It("rejects unknown regions without opening a session", func() {
			rr := post("/lockDoors", map[string]interface{}{"vid": vid, "region": "ATLANTIS"})
			Expect(rr.Code).To(Equal(http.StatusBadRequest))
		})
	})

	Context("actuation commands", func() {
		type expectation func(*mocks.SessionMockRecorder) *gomock.Call

		DescribeTable("opens and closes exactly one session",
			func(path string, expect expectation) {
				expectSession(protocol.RegionNorthAmerica)
				expect(session.EXPECT()).Return(nil).Times(1)

				rr := post(path, map[string]interface{}{"vid": vid})
				Expect(rr.Code).To(Equal(http.StatusOK))
				Expect(rr.Body.String()).To(Equal(proxy.Success))
				Expect(rr.Header().Get("Content-Type")).To(HavePrefix("text/plain"))
			},
			Entry("startEngine", "/startEngine", expectation(func(r *mocks.SessionMockRecorder) *gomock.Call { return r.StartEngine(gomock.Any(), vid) })),
			Entry("stopEngine", "/stopEngine", expectation(func(r *mocks.SessionMockRecorder) *gomock.Call { return r.StopEngine(gomock.Any(), vid) })),
			Entry("lockDoors", "/lockDoors", expectation(func(r *mocks.SessionMockRecorder) *gomock.Call { return r.LockDoors(gomock.Any(), vid) })),
			Entry("unlockDoors", "/unlockDoors", expectation(func(r *mocks.SessionMockRecorder) *gomock.Call { return r.UnlockDoors(gomock.Any(), vid) })),
			Entry("hazardLightsOn", "/hazardLightsOn", expectation(func(r *mocks.SessionMockRecorder) *gomock.Call { return r.HazardLightsOn(gomock.Any(), vid) })),
			Entry("hazardLightsOff", "/hazardLightsOff", expectation(func(r *mocks.SessionMockRecorder) *gomock.Call { return r.HazardLightsOff(gomock.Any(), vid) })),
		)

		DescribeTable("closes the session when the remote call fails",
			func(path string, expect expectation) {
				expectSession(protocol.RegionNorthAmerica)
				expect(session.EXPECT()).Return(protocol.NewRemoteCommandError("vehicle asleep")).Times(1)

				rr := post(path, map[string]interface{}{"vid": vid})
				Expect(rr.Code).To(Equal(http.StatusInternalServerError))
				Expect(rr.Body.String()).To(ContainSubstring("vehicle asleep"))
			},
			Entry("startEngine", "/startEngine", expectation(func(r *mocks.SessionMockRecorder) *gomock.Call { return r.StartEngine(gomock.Any(), vid) })),
			Entry("stopEngine", "/stopEngine", expectation(func(r *mocks.SessionMockRecorder) *gomock.Call { return r.StopEngine(gomock.Any(), vid) })),
			Entry("lockDoors", "/lockDoors", expectation(func(r *mocks.SessionMockRecorder) *gomock.Call { return r.LockDoors(gomock.Any(), vid) })),
			Entry("unlockDoors", "/unlockDoors", expectation(func(r *mocks.SessionMockRecorder) *gomock.Call { return r.UnlockDoors(gomock.Any(), vid) })),
			Entry("hazardLightsOn", "/hazardLightsOn", expectation(func(r *mocks.SessionMockRecorder) *gomock.Call { return r.HazardLightsOn(gomock.Any(), vid) })),
			Entry("hazardLightsOff", "/hazardLightsOff", expectation(func(r *mocks.SessionMockRecorder) *gomock.Call { return r.HazardLightsOff(gomock.Any(), vid) })),
		)

		It("keeps the command result when closing fails", func() {
			dialer.EXPECT().Dial(gomock.Any(), username, password, protocol.RegionNorthAmerica).Return(session, nil)
			session.EXPECT().StartEngine(gomock.Any(), vid).Return(nil)
			session.EXPECT().Close(gomock.Any()).Return(errors.New("logout failed")).Times(1)

			rr := post("/startEngine", map[string]interface{}{"vid": vid})
			Expect(rr.Code).To(Equal(http.StatusOK))
			Expect(rr.Body.String()).To(Equal(proxy.Success))
		})

		It("runs commands even if the client has gone away", func() {
			expectSession(protocol.RegionNorthAmerica)
			session.EXPECT().UnlockDoors(gomock.Any(), vid).DoAndReturn(func(ctx context.Context, _ string) error {
				return ctx.Err()
			})

			ctx, cancel := context.WithCancel(context.Background())
			cancel()
			req := httptest.NewRequest(http.MethodPost, "/unlockDoors", strings.NewReader(`{"vid": "`+vid+`"}`)).WithContext(ctx)
			rr := httptest.NewRecorder()
			p.ServeHTTP(rr, req)
			Expect(rr.Code).To(Equal(http.StatusOK))
		})
	})

	Context("error mapping", func() {
		It("returns unauthorized when sign-in is rejected", func() {
			dialer.EXPECT().Dial(gomock.Any(), username, password, protocol.RegionNorthAmerica).
				Return(nil, protocol.NewAuthenticationError("invalid_grant")).Times(1)

			rr := post("/lockDoors", map[string]interface{}{"vid": vid})
			Expect(rr.Code).To(Equal(http.StatusUnauthorized))
			Expect(rr.Header().Get("Content-Type")).To(HavePrefix("text/plain"))
		})

		It("returns bad gateway when the remote service is unreachable", func() {
			dialer.EXPECT().Dial(gomock.Any(), username, password, protocol.RegionNorthAmerica).
				Return(nil, protocol.NewNetworkError(errors.New("connection refused"), false)).Times(1)

			rr := post("/vehicles", nil)
			Expect(rr.Code).To(Equal(http.StatusBadGateway))
		})

		It("returns gateway timeout when the remote service is too slow", func() {
			expectSession(protocol.RegionNorthAmerica)
			session.EXPECT().StopEngine(gomock.Any(), vid).Return(protocol.NewNetworkError(context.DeadlineExceeded, true))

			rr := post("/stopEngine", map[string]interface{}{"vid": vid})
			Expect(rr.Code).To(Equal(http.StatusGatewayTimeout))
		})
	})

	Context("reads", func() {
		It("lists vehicles as JSON", func() {
			expectSession(protocol.RegionEurope)
			session.EXPECT().ListVehicles(gomock.Any()).Return([]vehicle.Summary{
				{"id": 1.0, "nickname": "Zoom", "vin": "JM3"},
			}, nil)

			rr := post("/vehicles", map[string]interface{}{"region": "MME"})
			Expect(rr.Code).To(Equal(http.StatusOK))
			Expect(rr.Header().Get("Content-Type")).To(Equal("application/json"))
			Expect(rr.Body.String()).To(MatchJSON(`[{"id": 1, "nickname": "Zoom", "vin": "JM3"}]`))
		})

		It("returns vehicle status as JSON", func() {
			expectSession(protocol.RegionNorthAmerica)
			session.EXPECT().GetStatus(gomock.Any(), vid).Return(&vehicle.Status{
				OdometerKm: 1234.5,
				Doors:      map[string]bool{"driverDoorOpen": false},
			}, nil)

			rr := post("/vehiclesStatus", map[string]interface{}{"vid": vid})
			Expect(rr.Code).To(Equal(http.StatusOK))

			var status vehicle.Status
			Expect(json.Unmarshal(rr.Body.Bytes(), &status)).To(Succeed())
			Expect(status.OdometerKm).To(Equal(1234.5))
			Expect(status.Doors).To(HaveKeyWithValue("driverDoorOpen", false))
		})
	})

	Context("checkDoors", func() {
		It("alerts without locking when a door is open", func() {
			expectSession(protocol.RegionNorthAmerica)
			session.EXPECT().GetStatus(gomock.Any(), vid).Return(&vehicle.Status{
				Doors: map[string]bool{"front": true},
			}, nil)
			session.EXPECT().LockDoors(gomock.Any(), gomock.Any()).Times(0)

			rr := post("/checkDoors", map[string]interface{}{"vid": vid})
			Expect(rr.Code).To(Equal(http.StatusOK))
			Expect(rr.Body.String()).To(Equal(vehicle.MsgDoorsOpen))
		})

		It("locks once when a door is unlocked", func() {
			expectSession(protocol.RegionNorthAmerica)
			session.EXPECT().GetStatus(gomock.Any(), vid).Return(&vehicle.Status{
				Doors:     map[string]bool{"front": false},
				DoorLocks: map[string]bool{"front": true},
				Windows:   map[string]bool{"front": false},
			}, nil)
			session.EXPECT().LockDoors(gomock.Any(), vid).Return(nil).Times(1)

			rr := post("/checkDoors", map[string]interface{}{"vid": vid})
			Expect(rr.Code).To(Equal(http.StatusOK))
			Expect(rr.Body.String()).To(Equal(vehicle.MsgDoorsUnlocked))
		})

		It("locks once when everything is closed", func() {
			expectSession(protocol.RegionNorthAmerica)
			session.EXPECT().GetStatus(gomock.Any(), vid).Return(&vehicle.Status{
				Doors:     map[string]bool{"front": false},
				DoorLocks: map[string]bool{"front": false},
				Windows:   map[string]bool{"front": false},
			}, nil)
			session.EXPECT().LockDoors(gomock.Any(), vid).Return(nil).Times(1)

			rr := post("/checkDoors", map[string]interface{}{"vid": vid})
			Expect(rr.Code).To(Equal(http.StatusOK))
			Expect(rr.Body.String()).To(Equal(vehicle.MsgDoorsOK))
		})

		It("reports a failed lock", func() {
			expectSession(protocol.RegionNorthAmerica)
			session.EXPECT().GetStatus(gomock.Any(), vid).Return(&vehicle.Status{
				DoorLocks: map[string]bool{"front": true},
			}, nil)
			session.EXPECT().LockDoors(gomock.Any(), vid).Return(protocol.NewRemoteCommandError("vehicle busy")).Times(1)

			rr := post("/checkDoors", map[string]interface{}{"vid": vid})
			Expect(rr.Code).To(Equal(http.StatusInternalServerError))
		})
	})

	Context("sendPOI", func() {
		It("sends a validated point of interest", func() {
			expectSession(protocol.RegionNorthAmerica)
			session.EXPECT().SendPOI(gomock.Any(), vid, vehicle.PointOfInterest{
				Latitude: 37.5, Longitude: -122.3, Name: "Home",
			}).Return(nil).Times(1)

			rr := post("/sendPOI", map[string]interface{}{"vid": vid, "latitude": 37.5, "longitude": "-122.3", "name": "Home"})
			Expect(rr.Code).To(Equal(http.StatusOK))
			Expect(rr.Body.String()).To(Equal(proxy.Success))
		})

		It("rejects a non-numeric latitude without opening a session", func() {
			rr := post("/sendPOI", map[string]interface{}{"vid": vid, "latitude": "north", "longitude": 1.0, "name": "Home"})
			Expect(rr.Code).To(Equal(http.StatusBadRequest))
			Expect(rr.Body.String()).To(ContainSubstring("invalid latitude param"))
		})

		It("rejects out-of-range coordinates without opening a session", func() {
			rr := post("/sendPOI", map[string]interface{}{"vid": vid, "latitude": 10.0, "longitude": 200.0, "name": "Home"})
			Expect(rr.Code).To(Equal(http.StatusBadRequest))
		})
	})

	Context("sendPOIfromURL", func() {
		It("does not support unknown hosts", func() {
			rr := post("/sendPOIfromURL", map[string]interface{}{"vid": vid, "url": "https://example.com/foo"})
			Expect(rr.Code).To(Equal(http.StatusOK))
			Expect(rr.Body.String()).To(Equal("URL Not Supported Yet."))
			Expect(httpmock.GetTotalCallCount()).To(BeZero())
		})

		It("sends Apple Maps places", func() {
			expectSession(protocol.RegionNorthAmerica)
			session.EXPECT().SendPOI(gomock.Any(), vid, vehicle.PointOfInterest{
				Latitude: 37.5, Longitude: -122.3, Name: "Home",
			}).Return(nil).Times(1)

			rr := post("/sendPOIfromURL", map[string]interface{}{"vid": vid, "url": "https://maps.apple.com/?q=Home&ll=37.5,-122.3"})
			Expect(rr.Code).To(Equal(http.StatusOK))
			Expect(rr.Body.String()).To(Equal(proxy.Success))
		})

		It("resolves short links before opening a session", func() {
			target := "https://www.google.com/maps/place/12.34,56.78/@12.34,56.78,17z"
			httpmock.RegisterResponder(http.MethodGet, "https://goo.gl/maps/abc", redirectTo(target))
			httpmock.RegisterResponder(http.MethodGet, target, httpmock.NewStringResponder(http.StatusOK, "<html></html>"))

			expectSession(protocol.RegionNorthAmerica)
			session.EXPECT().SendPOI(gomock.Any(), vid, vehicle.PointOfInterest{
				Latitude: 12.34, Longitude: 56.78, Name: maps.GoogleName,
			}).Return(nil).Times(1)

			rr := post("/sendPOIfromURL", map[string]interface{}{"vid": vid, "url": "https://goo.gl/maps/abc"})
			Expect(rr.Code).To(Equal(http.StatusOK))
			Expect(rr.Body.String()).To(Equal(proxy.Success))
		})

		It("reports unreachable short links without opening a session", func() {
			httpmock.RegisterResponder(http.MethodGet, "https://goo.gl/maps/abc", httpmock.NewErrorResponder(errors.New("no route to host")))

			rr := post("/sendPOIfromURL", map[string]interface{}{"vid": vid, "url": "https://goo.gl/maps/abc"})
			Expect(rr.Code).To(Equal(http.StatusBadGateway))
		})
	})

	Context("HTML pages", func() {
		It("renders the index", func() {
			rr := sendRequest(http.MethodGet, "/", nil)
			Expect(rr.Code).To(Equal(http.StatusOK))
			Expect(rr.Header().Get("Content-Type")).To(HavePrefix("text/html"))
			Expect(rr.Body.String()).To(ContainSubstring(`<option value="MNAO" selected>`))
		})

		It("renders the vehicle list", func() {
			expectSession(protocol.RegionAustralia)
			session.EXPECT().ListVehicles(gomock.Any()).Return([]vehicle.Summary{
				{"id": 77.0, "nickname": "Zoom & Go"},
			}, nil)

			rr := sendRequest(http.MethodGet, "/vehicles_html?region=MA", nil)
			Expect(rr.Code).To(Equal(http.StatusOK))
			Expect(rr.Body.String()).To(ContainSubstring("Zoom &amp; Go"))
			Expect(rr.Body.String()).To(ContainSubstring("Vehicles in MA"))
		})

		It("rejects unknown regions", func() {
			rr := sendRequest(http.MethodGet, "/vehicles_html?region=XX", nil)
			Expect(rr.Code).To(Equal(http.StatusBadRequest))
		})
	})
})
