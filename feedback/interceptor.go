// SPDX-FileCopyrightText: 2026 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package feedback

import (
	"github.com/pion/ecn-test/ecn"
	"github.com/pion/interceptor"
	"github.com/pion/logging"
	"github.com/pion/rtcp"
)

// Option configures the interceptors created by an InterceptorFactory.
type Option func(*Interceptor) error

// OnCount sets a callback invoked with the cumulative counts whenever a
// report added new packets.
func OnCount(f func(ecn.Count)) Option {
	return func(i *Interceptor) error {
		i.onCount = f

		return nil
	}
}

// Logger sets the interceptor logger.
func Logger(l logging.LeveledLogger) Option {
	return func(i *Interceptor) error {
		i.log = l

		return nil
	}
}

// InterceptorFactory creates ECN feedback interceptors.
type InterceptorFactory struct {
	opts []Option
}

// NewInterceptor returns a factory for ECN feedback interceptors.
func NewInterceptor(opts ...Option) (*InterceptorFactory, error) {
	return &InterceptorFactory{opts: opts}, nil
}

// NewInterceptor creates an interceptor for one peer connection.
func (f *InterceptorFactory) NewInterceptor(_ string) (interceptor.Interceptor, error) {
	i := &Interceptor{
		NoOp:    interceptor.NoOp{},
		counter: NewCounter(),
		log:     logging.NewDefaultLoggerFactory().NewLogger("ecn_feedback"),
	}
	for _, opt := range f.opts {
		if err := opt(i); err != nil {
			return nil, err
		}
	}

	return i, nil
}

// Interceptor counts the ECN codepoints reported by incoming congestion
// control feedback.
type Interceptor struct {
	interceptor.NoOp
	counter *Counter
	onCount func(ecn.Count)
	log     logging.LeveledLogger
}

// Count returns the cumulative counts seen so far.
func (i *Interceptor) Count() ecn.Count {
	return i.counter.Count()
}

// BindRTCPReader lets you modify any incoming RTCP packets. It is called once
// per sender/receiver, however this might change in the future. The returned
// method will be called once per packet batch.
func (i *Interceptor) BindRTCPReader(reader interceptor.RTCPReader) interceptor.RTCPReader {
	return interceptor.RTCPReaderFunc(func(b []byte, a interceptor.Attributes) (int, interceptor.Attributes, error) {
		n, attr, err := reader.Read(b, a)
		if err != nil {
			return 0, nil, err
		}
		if attr == nil {
			attr = make(interceptor.Attributes)
		}
		pkts, err := attr.GetRTCPPackets(b[:n])
		if err != nil {
			return 0, nil, err
		}
		for _, pkt := range pkts {
			report, ok := pkt.(*rtcp.CCFeedbackReport)
			if !ok {
				continue
			}
			if added := i.counter.AddReport(report); added > 0 {
				count := i.counter.Count()
				i.log.Tracef("ccfb from %v: %d new packets, %v", report.SenderSSRC, added, count)
				if i.onCount != nil {
					i.onCount(count)
				}
			}
		}

		return n, attr, nil
	})
}
