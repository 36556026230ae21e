package runner

import (
	"testing"

	"github.com/pkonrad/udpgen/internal/sender"
)

func TestOptionsNormalizeDefaults(t *testing.T) {
	o := Options{Workers: 0, RatePerWorker: -5, PayloadSize: 0, MaxTotalRate: -1}
	o.normalize()

	if o.Workers != 1 {
		t.Fatalf("expected 1 worker, got %d", o.Workers)
	}
	if o.RatePerWorker != 1 {
		t.Fatalf("expected rate 1, got %d", o.RatePerWorker)
	}
	if o.PayloadSize != sender.MinPayloadSize {
		t.Fatalf("expected payload %d, got %d", sender.MinPayloadSize, o.PayloadSize)
	}
	if o.MaxTotalRate != 0 {
		t.Fatalf("expected cap reset to 0, got %d", o.MaxTotalRate)
	}
	if o.Collector == nil {
		t.Fatal("expected collector to be created")
	}
}

func TestOptionsNormalizeKeepsValues(t *testing.T) {
	o := Options{Workers: 8, RatePerWorker: 500, PayloadSize: 1200, MaxTotalRate: 2000}
	o.normalize()

	if o.Workers != 8 || o.RatePerWorker != 500 || o.PayloadSize != 1200 || o.MaxTotalRate != 2000 {
		t.Fatalf("normalize mutated valid options: %+v", o)
	}
}
