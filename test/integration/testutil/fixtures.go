package testutil

import (
	"time"

	"plotlease/pkg/model"
)

type PlotBuilder struct {
	plot model.Plot
}

func NewPlotBuilder() *PlotBuilder {
	return &PlotBuilder{
		plot: model.Plot{
			OwnerID:    "507f1f77bcf86cd799439001",
			Name:       "North field",
			SizeM2:     20,
			PricePerM2: 0.5,
			CreatedAt:  time.Now().UTC(),
		},
	}
}

func (b *PlotBuilder) WithOwner(ownerID string) *PlotBuilder {
	b.plot.OwnerID = ownerID
	return b
}

func (b *PlotBuilder) WithName(name string) *PlotBuilder {
	b.plot.Name = name
	return b
}

func (b *PlotBuilder) WithSize(sizeM2 float64) *PlotBuilder {
	b.plot.SizeM2 = sizeM2
	return b
}

func (b *PlotBuilder) WithPricePerM2(price float64) *PlotBuilder {
	b.plot.PricePerM2 = price
	return b
}

func (b *PlotBuilder) BuildPtr() *model.Plot {
	plot := b.plot
	return &plot
}

func ValidPlot() *model.Plot {
	return NewPlotBuilder().BuildPtr()
}
