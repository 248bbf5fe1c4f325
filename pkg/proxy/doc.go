/*
Package proxy implements an HTTP gateway for sending commands to vehicles through a remote vehicle
service.

Every command route accepts a POST request with a JSON body. Each body may carry a "region" field
that selects the remote service's market; requests that omit it use the account's default region.
All routes except /vehicles also require a "vid" field identifying the vehicle.

	POST /vehicles          list vehicles on the account (JSON)
	POST /vehiclesStatus    vehicle status (JSON)
	POST /checkDoors        check doors and windows, then lock (text)
	POST /startEngine       (text "Success")
	POST /stopEngine
	POST /lockDoors
	POST /unlockDoors
	POST /hazardLightsOn
	POST /hazardLightsOff
	POST /sendPOI           send "latitude", "longitude" and "name" to the navigation system
	POST /sendPOIfromURL    send the place named by an Apple or Google Maps "url"

Each request opens its own session with the remote service and closes it before the response is
written. See [Dispatcher.Execute].
*/
package proxy
