package portfolio

import (
	"portfolio-api/internal/interfaces"
	"portfolio-api/internal/store"
)

func New(cfg *store.Config, brokers map[int]interfaces.Broker, opts ...Option) interfaces.Portfolio {
	return newService(cfg, brokers, opts...)
}
