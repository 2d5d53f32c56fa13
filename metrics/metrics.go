// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package metrics provides Prometheus collectors for flatframe's two
// observation points: the observer-adapter callback and the
// memory-reclamation policy's reclaim hook. It is a production add-on, not
// part of the framing core itself; neither flatframe nor flatframe/policy
// import it.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"code.hybscloud.com/flatframe/policy"
)

// Observer returns a callback suitable for flatframe.ObserverFramer /
// flatframe.ObserverDeframer that records per-message and per-byte counters
// for the named stream, registered against reg.
func Observer(reg prometheus.Registerer, stream string) func([]byte) {
	messages := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "flatframe_messages_total",
		Help: "Total frames observed.",
	}, []string{"stream"})
	bytesTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "flatframe_bytes_total",
		Help: "Total payload bytes observed.",
	}, []string{"stream"})
	reg.MustRegister(messages, bytesTotal)

	messagesForStream := messages.WithLabelValues(stream)
	bytesForStream := bytesTotal.WithLabelValues(stream)
	return func(payload []byte) {
		messagesForStream.Inc()
		bytesForStream.Add(float64(len(payload)))
	}
}

// WrapPolicy wraps p so that every reclamation event it fires is recorded
// against reg: a reclamations counter broken down by reason, and a gauge
// tracking the builder capacity each reclamation settled on.
func WrapPolicy(reg prometheus.Registerer, stream string, p policy.Policy) policy.Policy {
	reclamations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "flatframe_reclamations_total",
		Help: "Total memory-reclamation events, by reason.",
	}, []string{"stream", "reason"})
	capacityAfter := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "flatframe_builder_capacity_after_reclaim_bytes",
		Help: "Serialization builder capacity immediately after the most recent reclamation.",
	}, []string{"stream"})
	reg.MustRegister(reclamations, capacityAfter)

	return &observedPolicy{
		inner:         p,
		stream:        stream,
		reclamations:  reclamations,
		capacityAfter: capacityAfter,
	}
}

type observedPolicy struct {
	inner         policy.Policy
	stream        string
	reclamations  *prometheus.CounterVec
	capacityAfter *prometheus.GaugeVec
}

func (o *observedPolicy) ShouldReset(lastMessageSize, currentCapacity int) (policy.Reason, bool) {
	return o.inner.ShouldReset(lastMessageSize, currentCapacity)
}

func (o *observedPolicy) OnReclaim(e policy.Event) {
	o.reclamations.WithLabelValues(o.stream, e.Reason.String()).Inc()
	o.capacityAfter.WithLabelValues(o.stream).Set(float64(e.CapacityAfter))
	o.inner.OnReclaim(e)
}
