// Package storagetest holds the behavior every storage.Driver must satisfy,
// written as a Ginkgo shared spec so each driver package can run it.
package storagetest

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/innerai/pkg/llm"
	"github.com/papercomputeco/innerai/pkg/storage"
)

// NewExchange builds a test exchange. startedAt is truncated to milliseconds,
// the precision every driver keeps.
func NewExchange(id, operation string, status int, startedAt time.Time) *llm.Exchange {
	return &llm.Exchange{
		ID:         id,
		RequestID:  "req-" + id,
		Operation:  operation,
		Model:      "gemini-test",
		Language:   "en",
		Request:    json.RawMessage(`{"emotion":"sad","belief":"I always fail"}`),
		Reply:      "You are learning, not failing.",
		Status:     status,
		StartedAt:  startedAt.UTC().Truncate(time.Millisecond),
		DurationMs: 42,
	}
}

// DescribeDriver registers the shared driver specs. newDriver is called
// before each spec; the returned driver is closed after it.
func DescribeDriver(newDriver func() storage.Driver) {
	Describe("storage.Driver behavior", func() {
		describeDriver(newDriver)
	})
}

func describeDriver(newDriver func() storage.Driver) {
	var (
		driver storage.Driver
		ctx    context.Context
		base   time.Time
	)

	BeforeEach(func() {
		ctx = context.Background()
		base = time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
		driver = newDriver()
	})

	AfterEach(func() {
		if driver != nil {
			Expect(driver.Close()).To(Succeed())
		}
	})

	Describe("Put and Get", func() {
		It("round-trips an exchange", func() {
			exchange := NewExchange("ex-1", llm.OperationReframe, 200, base)
			Expect(driver.Put(ctx, exchange)).To(Succeed())

			got, err := driver.Get(ctx, "ex-1")
			Expect(err).NotTo(HaveOccurred())
			Expect(got.ID).To(Equal("ex-1"))
			Expect(got.RequestID).To(Equal("req-ex-1"))
			Expect(got.Operation).To(Equal(llm.OperationReframe))
			Expect(got.Model).To(Equal("gemini-test"))
			Expect(got.Reply).To(Equal("You are learning, not failing."))
			Expect(got.Status).To(Equal(200))
			Expect(got.StartedAt.Equal(exchange.StartedAt)).To(BeTrue())
			Expect(got.DurationMs).To(Equal(int64(42)))
			Expect(got.Request).To(MatchJSON(exchange.Request))
		})

		It("treats a repeated ID as a no-op", func() {
			first := NewExchange("ex-1", llm.OperationStory, 200, base)
			Expect(driver.Put(ctx, first)).To(Succeed())

			second := NewExchange("ex-1", llm.OperationStory, 500, base)
			Expect(driver.Put(ctx, second)).To(Succeed())

			got, err := driver.Get(ctx, "ex-1")
			Expect(err).NotTo(HaveOccurred())
			Expect(got.Status).To(Equal(200))
		})

		It("returns NotFoundError for unknown IDs", func() {
			_, err := driver.Get(ctx, "missing")
			Expect(err).To(MatchError(storage.NotFoundError{ID: "missing"}))
		})

		It("rejects nil exchanges and empty IDs", func() {
			Expect(driver.Put(ctx, nil)).NotTo(Succeed())
			Expect(driver.Put(ctx, &llm.Exchange{Operation: llm.OperationChat})).NotTo(Succeed())
		})
	})

	Describe("List", func() {
		BeforeEach(func() {
			for i := range 5 {
				id := fmt.Sprintf("ex-%d", i)
				Expect(driver.Put(ctx, NewExchange(id, llm.OperationChat, 200, base.Add(time.Duration(i)*time.Minute)))).To(Succeed())
			}
		})

		It("returns newest first", func() {
			got, err := driver.List(ctx, 10)
			Expect(err).NotTo(HaveOccurred())
			Expect(got).To(HaveLen(5))
			Expect(got[0].ID).To(Equal("ex-4"))
			Expect(got[4].ID).To(Equal("ex-0"))
		})

		It("honors the limit", func() {
			got, err := driver.List(ctx, 2)
			Expect(err).NotTo(HaveOccurred())
			Expect(got).To(HaveLen(2))
			Expect(got[0].ID).To(Equal("ex-4"))
			Expect(got[1].ID).To(Equal("ex-3"))
		})

		It("applies the default limit for non-positive values", func() {
			got, err := driver.List(ctx, 0)
			Expect(err).NotTo(HaveOccurred())
			Expect(got).To(HaveLen(5))
		})
	})

	Describe("Stats", func() {
		It("is empty for an empty journal", func() {
			stats, err := driver.Stats(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(stats.Total).To(Equal(0))
			Expect(stats.Failed).To(Equal(0))
		})

		It("counts totals, failures and operations", func() {
			Expect(driver.Put(ctx, NewExchange("a", llm.OperationChat, 200, base))).To(Succeed())
			Expect(driver.Put(ctx, NewExchange("b", llm.OperationStory, 429, base))).To(Succeed())
			Expect(driver.Put(ctx, NewExchange("c", llm.OperationStory, 200, base))).To(Succeed())
			Expect(driver.Put(ctx, NewExchange("d", llm.OperationReframe, 400, base))).To(Succeed())

			stats, err := driver.Stats(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(stats.Total).To(Equal(4))
			Expect(stats.Failed).To(Equal(2))
			Expect(stats.ByOperation).To(Equal(map[string]int{
				llm.OperationChat:    1,
				llm.OperationStory:   2,
				llm.OperationReframe: 1,
			}))
		})
	})
}
