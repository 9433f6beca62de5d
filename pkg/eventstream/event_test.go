package eventstream_test

import (
	"encoding/json"
	"strings"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/innerai/pkg/eventstream"
	"github.com/papercomputeco/innerai/pkg/llm"
)

var _ = Describe("Event", func() {
	var exchange *llm.Exchange

	BeforeEach(func() {
		exchange = &llm.Exchange{
			ID:         "ex-1",
			RequestID:  "req-1",
			Operation:  llm.OperationReframe,
			Model:      "gemini-2.0-flash",
			Request:    json.RawMessage(`{"emotion":"anxious","belief":"I will fail"}`),
			Reply:      "One exam does not define you.",
			Status:     200,
			StartedAt:  time.Unix(1735689600, 0).UTC(),
			DurationMs: 850,
		}
	})

	It("marshals ExchangeRecordedEvent with expected top-level keys", func() {
		event := eventstream.NewExchangeRecordedEvent("innerai-gateway", exchange)

		payload, err := json.Marshal(event)
		Expect(err).NotTo(HaveOccurred())

		var got map[string]any
		Expect(json.Unmarshal(payload, &got)).To(Succeed())

		Expect(got).To(HaveKey("schema_version"))
		Expect(got).To(HaveKey("event_type"))
		Expect(got).To(HaveKey("event_id"))
		Expect(got).To(HaveKey("emitted_at"))
		Expect(got).To(HaveKey("source"))
		Expect(got).To(HaveKey("exchange"))
	})

	It("fills the envelope from the exchange", func() {
		event := eventstream.NewExchangeRecordedEvent("innerai-gateway", exchange)

		Expect(event.SchemaVersion).To(Equal(eventstream.SchemaVersionV1))
		Expect(event.EventType).To(Equal(eventstream.EventTypeExchangeRecorded))
		Expect(strings.HasPrefix(event.EventID, "evt_")).To(BeTrue())
		Expect(event.Source.Service).To(Equal("innerai-gateway"))
		Expect(event.Source.Model).To(Equal("gemini-2.0-flash"))
		Expect(event.Exchange.ID).To(Equal("ex-1"))
		Expect(event.Key()).To(Equal(llm.OperationReframe))
	})

	It("generates a unique event ID per call", func() {
		a := eventstream.NewExchangeRecordedEvent("svc", exchange)
		b := eventstream.NewExchangeRecordedEvent("svc", exchange)
		Expect(a.EventID).NotTo(Equal(b.EventID))
	})

	It("defines stable event constants", func() {
		Expect(eventstream.SchemaVersionV1).To(BeNumerically(">", 0))
		Expect(eventstream.EventTypeExchangeRecorded).To(Equal("innerai.exchange.recorded"))
	})

	It("provides ErrNilExchangeEvent for nil payload validation", func() {
		Expect(eventstream.ErrNilExchangeEvent).To(MatchError("nil exchange event"))
	})
})
