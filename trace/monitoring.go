// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

package trace

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	callsParsed = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "apitrace_calls_parsed",
		Help: "Count of Calls successfully assembled and returned by ParseCall.",
	})

	incompleteCallsFlushed = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "apitrace_incomplete_calls_flushed",
		Help: "Count of pending ENTERs flushed without a matching LEAVE, at end of stream.",
	})

	bookmarkRestores = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "apitrace_bookmark_restores",
		Help: "Count of successful SetBookmark calls.",
	})

	fatalAborts = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "apitrace_fatal_aborts",
		Help: "Count of ParseCall calls that returned a FatalError (unknown event or value tag).",
	})

	bytesReadGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "apitrace_bytes_read",
		Help: "Logical (decompressed) byte offset of the most recently active Parser.",
	})
)

// RegisterMonitoring registers all of this package's monitoring metrics.
func RegisterMonitoring(reg prometheus.Registerer) {
	reg.MustRegister(
		callsParsed,
		incompleteCallsFlushed,
		bookmarkRestores,
		fatalAborts,
		bytesReadGauge,
	)
}
