/*
Package http serves the agent's admin API.

Routes:

	GET  /health         liveness
	GET  /status         pipeline counters and active limits
	GET  /metrics        Prometheus metrics
	GET  /symbols        symbol table dump
	GET  /traces/recent  recently completed traces (ring snapshot)
	GET  /ws/traces      live trace tap over WebSocket
	POST /ingest         assemble traces from an uploaded event journal

The ingest route accepts a msgpack journal stream (optionally gzipped)
and runs it through a per-request builder, so uploaded journals obey
the same single-writer contract as in-process event streams.
*/
package http
