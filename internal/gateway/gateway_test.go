package gateway_test

import (
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/diogopimentels/capicash/internal/gateway"
)

func TestGateway(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Gateway Suite")
}

var _ = Describe("Revenue split", func() {
	It("gives the seller 80 percent rounded half up", func() {
		cases := []struct {
			amount int64
			seller int64
		}{
			{10000, 8000},
			{100, 80},
			{333, 266},
			{1, 1},
			{9, 7},
			{12345, 9876},
			{99, 79},
		}
		for _, c := range cases {
			Expect(gateway.SellerShareCents(c.amount)).To(Equal(c.seller), "amount %d", c.amount)
		}
	})

	It("always reconstructs the gross from share plus fee", func() {
		for amount := int64(1); amount <= 1000; amount++ {
			share := gateway.SellerShareCents(amount)
			fee := gateway.PlatformFeeCents(amount)
			Expect(share + fee).To(Equal(amount))
			Expect(share).To(BeNumerically(">=", 0))
			Expect(fee).To(BeNumerically(">=", 0))
		}
	})
})
