package usecase

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSizingUsecase_Calculate(t *testing.T) {
	uc := NewSizingUsecase()

	out, err := uc.Calculate(SizingInput{
		DailyEnergyWh: 10000,
		PeakLoadW:     4000,
		Location:      "central",
		BackupDays:    2,
	})
	assert.NoError(t, err)

	//損失2割込み: ceil(10000 / 0.8)
	assert.Equal(t, int64(12500), out.RequiredDailyWh)
	//DoD80%で2日分: ceil(20000 / 0.8)
	assert.Equal(t, int64(25000), out.RequiredStorageWh)

	//単位あたり最安は550Wパネル。日照5.0hで1枚2750Wh/日
	assert.Equal(t, "Mono 550W panel", out.Panel.Name)
	assert.Equal(t, int64(5), out.Panel.Count)

	assert.Equal(t, "10kWh LiFePO4", out.Battery.Name)
	assert.Equal(t, int64(3), out.Battery.Count)

	//ピーク4000Wは力率0.8で5000VA → 10kVA 1台
	assert.Equal(t, "10kVA inverter", out.Inverter.Name)
	assert.Equal(t, int64(1), out.Inverter.Count)

	assert.Equal(t, out.Panel.Subtotal+out.Battery.Subtotal+out.Inverter.Subtotal, out.TotalCost)
}

func TestSizingUsecase_Calculate_Deterministic(t *testing.T) {
	uc := NewSizingUsecase()
	in := SizingInput{DailyEnergyWh: 7300, PeakLoadW: 1800, Location: "north", BackupDays: 1}

	first, err := uc.Calculate(in)
	assert.NoError(t, err)

	for i := 0; i < 5; i++ {
		again, err := uc.Calculate(in)
		assert.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestSizingUsecase_Calculate_LocationNormalized(t *testing.T) {
	uc := NewSizingUsecase()

	a, err := uc.Calculate(SizingInput{DailyEnergyWh: 5000, PeakLoadW: 1000, Location: "south", BackupDays: 1})
	assert.NoError(t, err)

	b, err := uc.Calculate(SizingInput{DailyEnergyWh: 5000, PeakLoadW: 1000, Location: "  SOUTH ", BackupDays: 1})
	assert.NoError(t, err)

	assert.Equal(t, a, b)
}

func TestSizingUsecase_Calculate_Validation(t *testing.T) {
	uc := NewSizingUsecase()

	cases := []SizingInput{
		{DailyEnergyWh: 0, PeakLoadW: 1000, Location: "central", BackupDays: 1},
		{DailyEnergyWh: -100, PeakLoadW: 1000, Location: "central", BackupDays: 1},
		{DailyEnergyWh: 5000, PeakLoadW: 0, Location: "central", BackupDays: 1},
		{DailyEnergyWh: 5000, PeakLoadW: 1000, Location: "central", BackupDays: 0},
		{DailyEnergyWh: 5000, PeakLoadW: 1000, Location: "central", BackupDays: 15},
		{DailyEnergyWh: 5000, PeakLoadW: 1000, Location: "mars", BackupDays: 1},
	}

	for _, in := range cases {
		_, err := uc.Calculate(in)
		he, ok := AsHTTPError(err)
		if assert.True(t, ok, "%+v", in) {
			assert.Equal(t, http.StatusBadRequest, he.Status)
		}
	}
}
