package metrics

import (
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
)

func TestMustRegisterAddsServiceLabel(t *testing.T) {
	reg := prometheus.NewRegistry()
	MustRegister(reg, "auth")

	AuthLoginsTotal.WithLabelValues(ResultSuccess).Inc()

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	var found bool
	for _, mf := range families {
		if mf.GetName() != "auth_logins_total" {
			continue
		}
		for _, m := range mf.GetMetric() {
			for _, lp := range m.GetLabel() {
				if lp.GetName() == "service" && lp.GetValue() == "auth" {
					found = true
				}
			}
		}
	}
	if !found {
		t.Fatal("auth_logins_total missing service label")
	}
}

func TestResult(t *testing.T) {
	if Result(nil) != ResultSuccess || Result(errors.New("x")) != ResultFailure {
		t.Fatal("unexpected result labels")
	}
}
