package services

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"auto_service_backend/internal/models"
	"auto_service_backend/internal/money"
	"auto_service_backend/pkg/utils"
)

// DefaultServiceName labels a line whose service was left blank.
const DefaultServiceName = "Shërbim"

// PartDraft is one editable part row.
type PartDraft struct {
	Name      string          `json:"name"`
	Quantity  decimal.Decimal `json:"quantity"`
	BuyPrice  decimal.Decimal `json:"buy_price"`
	SellPrice decimal.Decimal `json:"sell_price"`
}

// ServiceDraft is one editable service block.
type ServiceDraft struct {
	ServiceID   *int64          `json:"service_id,omitempty"`
	ServiceName string          `json:"service_name"`
	LaborCost   decimal.Decimal `json:"labor_cost"`
	Parts       []PartDraft     `json:"parts"`
}

// OrderDraft is the full create/edit form. Edits go through the methods below,
// each of which returns a new draft and leaves the receiver untouched.
type OrderDraft struct {
	ClientID     int64          `json:"client_id" binding:"required"`
	CarID        int64          `json:"car_id" binding:"required"`
	Km           *int64         `json:"km"`
	EmployeeName *string        `json:"employee_name"`
	Services     []ServiceDraft `json:"services" binding:"required,min=1"`
}

func blankPart() PartDraft {
	return PartDraft{Quantity: decimal.NewFromInt(1)}
}

func blankService() ServiceDraft {
	return ServiceDraft{Parts: []PartDraft{blankPart()}}
}

// NewOrderDraft returns a form with one blank service holding one blank part.
func NewOrderDraft(clientID, carID int64) OrderDraft {
	return OrderDraft{ClientID: clientID, CarID: carID, Services: []ServiceDraft{blankService()}}
}

func (d OrderDraft) clone() OrderDraft {
	out := d
	out.Services = make([]ServiceDraft, len(d.Services))
	for i, s := range d.Services {
		s.Parts = append([]PartDraft(nil), s.Parts...)
		out.Services[i] = s
	}
	return out
}

func (d OrderDraft) hasService(i int) bool {
	return i >= 0 && i < len(d.Services)
}

func (d OrderDraft) hasPart(i, j int) bool {
	return d.hasService(i) && j >= 0 && j < len(d.Services[i].Parts)
}

// AddService appends a blank service block.
func (d OrderDraft) AddService() OrderDraft {
	out := d.clone()
	out.Services = append(out.Services, blankService())
	return out
}

// RemoveService drops service i. The last remaining service is kept.
func (d OrderDraft) RemoveService(i int) OrderDraft {
	if !d.hasService(i) || len(d.Services) <= 1 {
		return d
	}
	out := d.clone()
	out.Services = append(out.Services[:i], out.Services[i+1:]...)
	return out
}

// SelectCatalogService links service i to a catalog entry and copies its name.
func (d OrderDraft) SelectCatalogService(i int, svc models.Service) OrderDraft {
	if !d.hasService(i) {
		return d
	}
	out := d.clone()
	id := svc.ID
	out.Services[i].ServiceID = &id
	out.Services[i].ServiceName = svc.Name
	return out
}

// SetServiceName sets a free-text name and drops any catalog link.
func (d OrderDraft) SetServiceName(i int, name string) OrderDraft {
	if !d.hasService(i) {
		return d
	}
	out := d.clone()
	out.Services[i].ServiceID = nil
	out.Services[i].ServiceName = name
	return out
}

// SetLaborCost sets the labor amount of service i.
func (d OrderDraft) SetLaborCost(i int, amount decimal.Decimal) OrderDraft {
	if !d.hasService(i) {
		return d
	}
	out := d.clone()
	out.Services[i].LaborCost = amount
	return out
}

// AddPart appends a blank part to service i.
func (d OrderDraft) AddPart(i int) OrderDraft {
	if !d.hasService(i) {
		return d
	}
	out := d.clone()
	out.Services[i].Parts = append(out.Services[i].Parts, blankPart())
	return out
}

// RemovePart drops part j of service i. The last remaining part row is kept.
func (d OrderDraft) RemovePart(i, j int) OrderDraft {
	if !d.hasPart(i, j) || len(d.Services[i].Parts) <= 1 {
		return d
	}
	out := d.clone()
	parts := out.Services[i].Parts
	out.Services[i].Parts = append(parts[:j], parts[j+1:]...)
	return out
}

// SetPart replaces part j of service i.
func (d OrderDraft) SetPart(i, j int, part PartDraft) OrderDraft {
	if !d.hasPart(i, j) {
		return d
	}
	out := d.clone()
	out.Services[i].Parts[j] = part
	return out
}

// namedParts are the parts that will be persisted: blank rows are form filler.
func (s ServiceDraft) namedParts() models.PartList {
	var parts models.PartList
	for _, p := range s.Parts {
		name := strings.TrimSpace(p.Name)
		if name == "" {
			continue
		}
		parts = append(parts, models.Part{
			Name:      name,
			Quantity:  money.NormalizeQuantity(p.Quantity),
			BuyPrice:  p.BuyPrice,
			SellPrice: p.SellPrice,
		})
	}
	return parts
}

// Totals is the line breakdown the service will persist as.
func (s ServiceDraft) Totals() money.Totals {
	return money.LineTotals(s.LaborCost, s.namedParts().Amounts())
}

// PreviewTotals is the order-level breakdown of the draft.
func (d OrderDraft) PreviewTotals() money.Totals {
	lines := make([]money.Totals, 0, len(d.Services))
	for _, s := range d.Services {
		lines = append(lines, s.Totals())
	}
	return money.Sum(lines...)
}

// Validate checks references and amounts before anything is written.
func (d OrderDraft) Validate() error {
	if d.ClientID <= 0 {
		return fmt.Errorf("%w: client is required", ErrValidation)
	}
	if d.CarID <= 0 {
		return fmt.Errorf("%w: vehicle is required", ErrValidation)
	}
	if d.Km != nil && *d.Km < 0 {
		return fmt.Errorf("%w: km cannot be negative", ErrValidation)
	}
	if len(d.Services) == 0 {
		return fmt.Errorf("%w: at least one service is required", ErrValidation)
	}
	for i, s := range d.Services {
		if s.LaborCost.IsNegative() {
			return fmt.Errorf("%w: service %d has a negative labor cost", ErrValidation, i+1)
		}
		for j, p := range s.Parts {
			if money.IsNegative(p.BuyPrice, p.SellPrice) {
				return fmt.Errorf("%w: part %d of service %d has a negative price", ErrValidation, j+1, i+1)
			}
		}
	}
	return nil
}

// BuildLineItems turns each service into one persisted line with precomputed money fields.
func (d OrderDraft) BuildLineItems() []models.OrderItem {
	items := make([]models.OrderItem, 0, len(d.Services))
	for _, s := range d.Services {
		parts := s.namedParts()
		totals := money.LineTotals(s.LaborCost, parts.Amounts())

		name := strings.TrimSpace(s.ServiceName)
		if name == "" {
			name = DefaultServiceName
		}

		descs := make([]string, 0, len(parts))
		for _, p := range parts {
			descs = append(descs, fmt.Sprintf("%s (%sx)", p.Name, p.Quantity.String()))
		}

		items = append(items, models.OrderItem{
			ServiceName: name,
			Description: utils.NewNullString(strings.Join(descs, ", ")),
			Quantity:    1,
			UnitPrice:   totals.Total,
			LaborCost:   totals.LaborCost,
			PartsCost:   totals.PartsCost,
			Parts:       parts,
		})
	}
	return items
}

// DraftFromOrder rebuilds the edit form of a stored order.
// Service names are kept as stored and linked to a catalog entry only on an exact
// name match; renamed or deleted catalog entries leave the line unlinked.
func DraftFromOrder(o *models.Order, catalog []models.Service) OrderDraft {
	byName := make(map[string]int64, len(catalog))
	for _, svc := range catalog {
		byName[svc.Name] = svc.ID
	}

	d := OrderDraft{
		ClientID:     o.ClientID,
		CarID:        o.CarID,
		Km:           o.Km,
		EmployeeName: o.EmployeeName,
	}
	for _, item := range o.Items {
		s := ServiceDraft{ServiceName: item.ServiceName, LaborCost: item.LaborCost}
		if len(item.Parts) == 0 && item.LaborCost.IsZero() {
			// Lines priced as a whole carry their price in unit_price only.
			s.LaborCost = item.UnitPrice
		}
		if id, ok := byName[item.ServiceName]; ok {
			id := id
			s.ServiceID = &id
		}
		for _, p := range item.Parts {
			s.Parts = append(s.Parts, PartDraft{
				Name:      p.Name,
				Quantity:  money.NormalizeQuantity(p.Quantity),
				BuyPrice:  p.BuyPrice,
				SellPrice: p.SellPrice,
			})
		}
		if len(s.Parts) == 0 {
			s.Parts = []PartDraft{blankPart()}
		}
		d.Services = append(d.Services, s)
	}
	if len(d.Services) == 0 {
		d.Services = []ServiceDraft{blankService()}
	}
	return d
}
