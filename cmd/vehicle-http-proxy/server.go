package main

import (
	"context"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/tls"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/pem"
	"errors"
	"math/big"
	"net"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/remote-vehicle/vehicle-gateway/internal/log"
)

const (
	shutdownGracePeriod = 10 * time.Second
	readHeaderTimeout   = 10 * time.Second
)

// selfSignedCertificate returns a certificate for localhost. It is only suitable for clients on the
// same machine, which can pin it.
func selfSignedCertificate() (certPEM []byte, keyPEM []byte, err error) {
	cert := x509.Certificate{
		SerialNumber: big.NewInt(2),
		Subject: pkix.Name{
			CommonName: "localhost",
		},
		DNSNames:    []string{"localhost"},
		IPAddresses: []net.IP{net.IPv4(127, 0, 0, 1), net.IPv6loopback},
		NotBefore:   time.Now().Add(-time.Minute),
		NotAfter:    time.Now().Add(time.Hour * 24 * 365 * 5),
		KeyUsage:    x509.KeyUsageDigitalSignature | x509.KeyUsageCertSign,
		ExtKeyUsage: []x509.ExtKeyUsage{x509.ExtKeyUsageServerAuth},
		IsCA:        true,

		BasicConstraintsValid: true,
	}

	skey, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		return
	}
	certDER, err := x509.CreateCertificate(rand.Reader, &cert, &cert, &skey.PublicKey, skey)
	if err != nil {
		return
	}
	certPEM = pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: certDER})

	keyDER, err := x509.MarshalECPrivateKey(skey)
	if err != nil {
		return
	}
	keyPEM = pem.EncodeToMemory(&pem.Block{Type: "EC PRIVATE KEY", Bytes: keyDER})
	return
}

func newServer(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: readHeaderTimeout,
	}
}

// useSelfSignedCertificate configures server to serve TLS with a new self-signed certificate and
// returns the certificate in PEM format.
func useSelfSignedCertificate(server *http.Server) (string, error) {
	certPEM, keyPEM, err := selfSignedCertificate()
	if err != nil {
		return "", err
	}
	cert, err := tls.X509KeyPair(certPEM, keyPEM)
	if err != nil {
		return "", err
	}
	server.TLSConfig = &tls.Config{
		Certificates: []tls.Certificate{cert},
		MinVersion:   tls.VersionTLS12,
	}
	return string(certPEM), nil
}

// serve accepts connections on listener until ctx is cancelled, then shuts server down gracefully.
// TLS is used if server has a certificate or if certFile and keyFile are set.
func serve(ctx context.Context, server *http.Server, listener net.Listener, certFile, keyFile string) error {
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		var err error
		switch {
		case server.TLSConfig != nil && len(server.TLSConfig.Certificates) > 0:
			err = server.ServeTLS(listener, "", "")
		case certFile != "":
			err = server.ServeTLS(listener, certFile, keyFile)
		default:
			err = server.Serve(listener)
		}
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	})

	g.Go(func() error {
		<-ctx.Done()
		log.Info("Shutting down server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGracePeriod)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
