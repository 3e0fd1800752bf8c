// Command agent runs the TraceForge agent: it hosts the admin API
// (health, status, Prometheus metrics, symbol dump, recent traces,
// live trace tap, journal ingest) and ships assembled traces to a
// spool file or an HTTP collector.
//
// With -replay it instead assembles traces from a captured event
// journal and exits.
package main
