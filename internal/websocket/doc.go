// Package websocket serves the live kilometraje adjuster. A client opens
// /ws/kilometraje and sends one JSON message per slider movement:
//
//	{"request_id":"42","vehicle":{"brand":"Kia","model_year":2021},
//	 "selected_odometer_km":48000,"base_price":315000}
//
// and receives exactly one reply per message, in order, carrying either the
// adjustment or an error:
//
//	{"request_id":"42","adjustment":{"factor":0.95,...}}
//
// The server pings every PingPeriod and drops peers that miss PongWait.
// Close sends every open session a going-away close frame.
package websocket
