package service

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Метрики сервиса. Регистрируются в default-реестре на init пакета;
// отдаются наружу через promhttp на служебном HTTP (см. cmd/qrtoken-service).
var (
	validationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "qrtoken_validations_total",
		Help: "Validation outcomes by reason code.",
	}, []string{"reason"})

	rotationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "qrtoken_rotations_total",
		Help: "Token rotation attempts by result.",
	}, []string{"result"})

	issuerUp = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "qrtoken_issuer_ready",
		Help: "1 when the issuer observes a fresh token in the store.",
	})
)
