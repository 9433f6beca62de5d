package worker

import (
	"context"
	"errors"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/innerai/pkg/llm"
	"github.com/papercomputeco/innerai/pkg/logger"
	"github.com/papercomputeco/innerai/pkg/storage"
	"github.com/papercomputeco/innerai/pkg/storage/inmemory"
	testutils "github.com/papercomputeco/innerai/pkg/utils/test"
)

type failingDriver struct {
	storage.Driver
}

func (failingDriver) Put(context.Context, *llm.Exchange) error {
	return errors.New("disk full")
}

func newExchange(id string) *llm.Exchange {
	return &llm.Exchange{
		ID:        id,
		Operation: llm.OperationReframe,
		Model:     "test-model",
		Reply:     "A kinder thought.",
		Status:    200,
		StartedAt: time.Now().UTC(),
	}
}

var _ = Describe("Worker Pool", func() {
	var (
		wp        *Pool
		driver    *inmemory.Driver
		publisher *testutils.MockPublisher
		ctx       context.Context
	)

	BeforeEach(func() {
		ctx = context.Background()
		driver = inmemory.NewDriver()
		publisher = testutils.NewMockPublisher()

		var err error
		wp, err = NewPool(&Config{
			Driver:    driver,
			Publisher: publisher,
			Service:   "innerai-gateway",
			Logger:    logger.Nop(),
		})
		Expect(err).NotTo(HaveOccurred())
	})

	It("requires a driver", func() {
		_, err := NewPool(&Config{})
		Expect(err).To(HaveOccurred())
	})

	Describe("Enqueue", func() {
		It("returns true when the queue has capacity", func() {
			Expect(wp.Enqueue(Job{Exchange: newExchange("ex-1")})).To(BeTrue())
			wp.Close()
		})

		It("rejects jobs without an exchange", func() {
			Expect(wp.Enqueue(Job{})).To(BeFalse())
			wp.Close()
		})
	})

	Describe("processing", func() {
		It("stores every enqueued exchange", func() {
			for _, id := range []string{"ex-1", "ex-2", "ex-3"} {
				Expect(wp.Enqueue(Job{Exchange: newExchange(id)})).To(BeTrue())
			}
			// Drain the worker pool to ensure storage completes before assertions
			wp.Close()

			Expect(driver.Count()).To(Equal(3))
			got, err := driver.Get(ctx, "ex-2")
			Expect(err).NotTo(HaveOccurred())
			Expect(got.Reply).To(Equal("A kinder thought."))
		})

		It("publishes an event for each stored exchange", func() {
			wp.Enqueue(Job{Exchange: newExchange("ex-1")})
			wp.Close()

			events := publisher.Events()
			Expect(events).To(HaveLen(1))
			Expect(events[0].Exchange.ID).To(Equal("ex-1"))
			Expect(events[0].Source.Service).To(Equal("innerai-gateway"))
		})

		It("keeps the stored exchange when publishing fails", func() {
			publisher.FailPublish = true
			wp.Enqueue(Job{Exchange: newExchange("ex-1")})
			wp.Close()

			Expect(driver.Count()).To(Equal(1))
		})

		It("does not publish when storage fails", func() {
			failing, err := NewPool(&Config{
				Driver:    failingDriver{},
				Publisher: publisher,
			})
			Expect(err).NotTo(HaveOccurred())

			failing.Enqueue(Job{Exchange: newExchange("ex-1")})
			failing.Close()
			wp.Close()

			Expect(publisher.Events()).To(BeEmpty())
		})
	})

	It("tolerates repeated Close calls", func() {
		wp.Close()
		Expect(wp.Close).NotTo(Panic())
	})
})
