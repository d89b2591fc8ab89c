package service

import (
	"testing"

	"github.com/flexprice/recurring/internal/api/dto"
	ierr "github.com/flexprice/recurring/internal/errors"
	"github.com/flexprice/recurring/internal/testutil"
	"github.com/flexprice/recurring/internal/types"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

type PaymentServiceSuite struct {
	testutil.BaseServiceTestSuite
	service  PaymentService
	checkout CheckoutService
}

func TestPaymentService(t *testing.T) {
	suite.Run(t, new(PaymentServiceSuite))
}

func (s *PaymentServiceSuite) SetupTest() {
	s.BaseServiceTestSuite.SetupTest()
	params := newTestServiceParams(&s.BaseServiceTestSuite)
	s.service = NewPaymentService(params)
	s.checkout = NewCheckoutService(params, NewBillingPlanService(params))
}

func (s *PaymentServiceSuite) charge(accountID string, amount int64) string {
	resp, err := s.checkout.Checkout(s.GetContext(), dto.CheckoutRequest{
		AccountID: accountID,
		Mode:      types.CheckoutModeOneTime,
		Price:     lo.ToPtr(decimal.NewFromInt(amount)),
		Currency:  "USD",
	})
	s.Require().NoError(err)
	return resp.PaymentID
}

func (s *PaymentServiceSuite) TestGetPayment() {
	id := s.charge("acc_a", 10)

	resp, err := s.service.GetPayment(s.GetContext(), id)
	s.Require().NoError(err)
	s.Equal(id, resp.ID)
	s.Equal(types.PaymentStatusPending, resp.Status)

	_, err = s.service.GetPayment(s.GetContext(), "")
	s.True(ierr.IsValidation(err))

	_, err = s.service.GetPayment(s.GetContext(), "pay_missing")
	s.True(ierr.IsNotFound(err))
}

func (s *PaymentServiceSuite) TestListPayments() {
	s.charge("acc_a", 10)
	s.charge("acc_a", 11)
	s.charge("acc_b", 12)

	all, err := s.service.ListPayments(s.GetContext(), nil)
	s.Require().NoError(err)
	s.Len(all.Items, 3)

	filter := types.NewPaymentFilter()
	filter.AccountID = "acc_a"
	mine, err := s.service.ListPayments(s.GetContext(), filter)
	s.Require().NoError(err)
	s.Len(mine.Items, 2)

	filter = types.NewPaymentFilter()
	filter.Statuses = []types.PaymentStatus{types.PaymentStatusPaid}
	paid, err := s.service.ListPayments(s.GetContext(), filter)
	s.Require().NoError(err)
	s.Empty(paid.Items)
}
