package repository

import (
	"github.com/flexprice/recurring/internal/domain/billingplan"
	"github.com/flexprice/recurring/internal/domain/label"
	"github.com/flexprice/recurring/internal/domain/payment"
	"github.com/flexprice/recurring/internal/domain/subscription"
	"github.com/flexprice/recurring/internal/logger"
	"github.com/flexprice/recurring/internal/postgres"
	postgresRepo "github.com/flexprice/recurring/internal/repository/postgres"
)

type RepositoryType string

const (
	PostgresRepo RepositoryType = "postgres"
)

func NewSubscriptionRepository(db *postgres.DB, logger *logger.Logger) subscription.Repository {
	return postgresRepo.NewSubscriptionRepository(db, logger)
}

func NewPaymentRepository(db *postgres.DB, logger *logger.Logger) payment.Repository {
	return postgresRepo.NewPaymentRepository(db, logger)
}

func NewBillingPlanRepository(db *postgres.DB, logger *logger.Logger) billingplan.Repository {
	return postgresRepo.NewBillingPlanRepository(db, logger)
}

func NewLabelRepository(db *postgres.DB, logger *logger.Logger) label.Repository {
	return postgresRepo.NewLabelRepository(db, logger)
}
