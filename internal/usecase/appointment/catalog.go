package appointment

import (
	"context"
	"sort"

	"go.uber.org/zap"

	domain "github.com/BruksfildServices01/jacare-do-corte/internal/domain/appointment"
	"github.com/BruksfildServices01/jacare-do-corte/internal/models"
)

func findDefaultService(id uint) (models.Service, bool) {
	for _, s := range models.DefaultServices() {
		if s.ID == id {
			return s, true
		}
	}
	return models.Service{}, false
}

func findDefaultBarber(id uint) (models.Barber, bool) {
	for _, b := range models.DefaultBarbers() {
		if b.ID == id {
			return b, true
		}
	}
	return models.Barber{}, false
}

type Catalog struct {
	Services []models.Service `json:"services"`
	Barbers  []models.Barber  `json:"barbers"`
	Slots    []string         `json:"slots"`
	Fallback bool             `json:"fallback"`
}

type GetCatalog struct {
	catalog domain.Catalog
	log     *zap.Logger
	slots   []string
}

func NewGetCatalog(catalog domain.Catalog, log *zap.Logger, slots []string) *GetCatalog {
	return &GetCatalog{catalog: catalog, log: log, slots: slots}
}

// Execute never fails: any catalog error switches to the built-in list.
func (uc *GetCatalog) Execute(ctx context.Context) Catalog {
	services, err := uc.catalog.ListServices(ctx)
	if err == nil && len(services) > 0 {
		barbers, err := uc.catalog.ListBarbers(ctx)
		if err == nil && len(barbers) > 0 {
			return Catalog{Services: services, Barbers: barbers, Slots: uc.slots}
		}
		if err != nil {
			uc.log.Warn("barber catalog unavailable, using defaults", zap.Error(err))
		}
	} else if err != nil {
		uc.log.Warn("service catalog unavailable, using defaults", zap.Error(err))
	}

	services = models.DefaultServices()
	sort.SliceStable(services, func(i, j int) bool {
		return services[i].Price < services[j].Price
	})

	return Catalog{
		Services: services,
		Barbers:  models.DefaultBarbers(),
		Slots:    uc.slots,
		Fallback: true,
	}
}
