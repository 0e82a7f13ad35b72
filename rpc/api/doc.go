// Package api implements the REST API of zKV on top of a store.IStore.
//
// Routes:
//
//	GET  /init                   "ok"
//	GET  /query/{key}            text value, 404 if missing
//	GET  /del/{key}              delete key
//	POST /add                    {"key": "...", "value": "..."}
//	POST /batch                  [{"key": "...", "value": "..."}, ...]
//	POST /list                   ["k1", "k2"] => found entries, 404 if none
//	POST /zadd/{key}             {"value": "member", "score": "1.5"}
//	POST /zrange/{key}           {"min_score": "-inf", "max_score": "10"} => [{"score", "value"}], 404 if empty
//	GET  /zrmv/{key}/{value}     remove member
//	GET  /zscore/{key}/{value}   score of member, 404 if missing
//	GET  /zcard/{key}            number of members
//	GET  /metrics                Prometheus metrics
//
// Scores are strings in JSON so that "+inf" and "-inf" can be expressed,
// plain JSON numbers are accepted too. A NaN score or a malformed body is
// answered with 400.
package api
