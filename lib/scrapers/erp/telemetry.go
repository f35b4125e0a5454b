package erp

import (
	"sync"

	"challanup-backend/lib/restyutil"

	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel"
)

var tracer = otel.Tracer("challanup.lib.scrapers.erp")

var instrumentOutputLock sync.Mutex
var restyInstrumentOutput restyutil.InstrumentOutput

// SetRestyInstrumentOutput makes clients created afterwards dump
// every HTTP exchange to `out`. Useful when reverse-engineering new
// controller responses.
func SetRestyInstrumentOutput(out restyutil.InstrumentOutput) {
	instrumentOutputLock.Lock()
	defer instrumentOutputLock.Unlock()
	restyInstrumentOutput = out
}

func applyInstrumentOutput(client *resty.Client, out restyutil.InstrumentOutput) {
	restyutil.InstrumentClient(client, out)
}
