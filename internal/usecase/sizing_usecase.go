package usecase

import (
	"net/http"
	"sort"
	"strings"
)

// SizingUsecase は太陽光システムの簡易サイジング計算。
// 固定のオプション表から単位あたりコストが最安のものを選ぶ純計算で、
// DBにもネットワークにも触らない。
type SizingUsecase struct{}

func NewSizingUsecase() *SizingUsecase {
	return &SizingUsecase{}
}

type SizingInput struct {
	//1日の消費電力量（Wh）
	DailyEnergyWh int64
	//同時使用のピーク負荷（W）
	PeakLoadW int64
	//日照帯。north/central/south
	Location string
	//停電時に持たせたい日数
	BackupDays int64
}

type SizingComponent struct {
	Name      string `json:"name"`
	UnitSpec  int64  `json:"unit_spec"`
	UnitPrice int64  `json:"unit_price"`
	Count     int64  `json:"count"`
	Subtotal  int64  `json:"subtotal"`
}

type SizingOutput struct {
	Panel    SizingComponent `json:"panel"`
	Battery  SizingComponent `json:"battery"`
	Inverter SizingComponent `json:"inverter"`
	//システム損失込みで必要な日次発電量（Wh）
	RequiredDailyWh int64 `json:"required_daily_wh"`
	//必要バッテリー容量（Wh、DoD考慮後）
	RequiredStorageWh int64 `json:"required_storage_wh"`
	TotalCost         int64 `json:"total_cost"`
}

type sizingOption struct {
	name string
	//パネルならW、バッテリーならWh、インバータならVA
	spec  int64
	price int64
}

// 単位あたりコスト比較。specあたりの価格が安い順。
func byCostPerUnit(opts []sizingOption) []sizingOption {
	sorted := make([]sizingOption, len(opts))
	copy(sorted, opts)
	sort.Slice(sorted, func(i, j int) bool {
		//price/spec の比較を乗算で行う（整数のまま）
		return sorted[i].price*sorted[j].spec < sorted[j].price*sorted[i].spec
	})
	return sorted
}

// 固定のオプション表。価格は最小通貨単位。
var (
	panelOptions = []sizingOption{
		{name: "Mono 300W panel", spec: 300, price: 9500000},
		{name: "Mono 450W panel", spec: 450, price: 13500000},
		{name: "Mono 550W panel", spec: 550, price: 15900000},
	}
	batteryOptions = []sizingOption{
		{name: "2.4kWh LiFePO4", spec: 2400, price: 65000000},
		{name: "5kWh LiFePO4", spec: 5000, price: 120000000},
		{name: "10kWh LiFePO4", spec: 10000, price: 228000000},
	}
	inverterOptions = []sizingOption{
		{name: "1.5kVA inverter", spec: 1500, price: 28000000},
		{name: "3kVA inverter", spec: 3000, price: 48000000},
		{name: "5kVA inverter", spec: 5000, price: 75000000},
		{name: "10kVA inverter", spec: 10000, price: 140000000},
	}
)

// 地域ごとの実効日照時間（0.1時間単位）。
var sunHoursTenthsByLocation = map[string]int64{
	"north":   55,
	"central": 50,
	"south":   45,
}

const (
	//システム損失を2割見込む（出力 = 定格 × 0.8）
	derateNum = 8
	derateDen = 10
	//バッテリーの放電深度80%
	dodNum = 8
	dodDen = 10
	//インバータは力率0.8でVA→W換算
	pfNum = 8
	pfDen = 10
)

func ceilDiv(a int64, b int64) int64 {
	return (a + b - 1) / b
}

// Calculate は入力からパネル・バッテリー・インバータの台数と概算費用を出す。
// 同じ入力は常に同じ結果になる。
func (u *SizingUsecase) Calculate(in SizingInput) (SizingOutput, error) {
	if in.DailyEnergyWh <= 0 {
		return SizingOutput{}, NewHTTPError(http.StatusBadRequest, "invalid daily_energy_wh")
	}
	if in.PeakLoadW <= 0 {
		return SizingOutput{}, NewHTTPError(http.StatusBadRequest, "invalid peak_load_w")
	}
	if in.BackupDays <= 0 || in.BackupDays > 14 {
		return SizingOutput{}, NewHTTPError(http.StatusBadRequest, "invalid backup_days")
	}

	sunTenths, ok := sunHoursTenthsByLocation[strings.ToLower(strings.TrimSpace(in.Location))]
	if !ok {
		return SizingOutput{}, NewHTTPError(http.StatusBadRequest, "invalid location")
	}

	//損失込みの必要日次発電量
	requiredDailyWh := ceilDiv(in.DailyEnergyWh*derateDen, derateNum)

	//パネル：1枚あたりの日次発電量 = 定格W × 日照時間
	panel := byCostPerUnit(panelOptions)[0]
	perPanelDailyWh := panel.spec * sunTenths / 10
	panelCount := ceilDiv(requiredDailyWh, perPanelDailyWh)

	//バッテリー：バックアップ日数分をDoD考慮で確保
	requiredStorageWh := ceilDiv(in.DailyEnergyWh*in.BackupDays*dodDen, dodNum)
	battery := byCostPerUnit(batteryOptions)[0]
	batteryCount := ceilDiv(requiredStorageWh, battery.spec)

	//インバータ：ピーク負荷を力率換算でまかなえる最小構成
	requiredVA := ceilDiv(in.PeakLoadW*pfDen, pfNum)
	inverter := byCostPerUnit(inverterOptions)[0]
	inverterCount := ceilDiv(requiredVA, inverter.spec)

	out := SizingOutput{
		Panel: SizingComponent{
			Name:      panel.name,
			UnitSpec:  panel.spec,
			UnitPrice: panel.price,
			Count:     panelCount,
			Subtotal:  panel.price * panelCount,
		},
		Battery: SizingComponent{
			Name:      battery.name,
			UnitSpec:  battery.spec,
			UnitPrice: battery.price,
			Count:     batteryCount,
			Subtotal:  battery.price * batteryCount,
		},
		Inverter: SizingComponent{
			Name:      inverter.name,
			UnitSpec:  inverter.spec,
			UnitPrice: inverter.price,
			Count:     inverterCount,
			Subtotal:  inverter.price * inverterCount,
		},
		RequiredDailyWh:   requiredDailyWh,
		RequiredStorageWh: requiredStorageWh,
	}
	out.TotalCost = out.Panel.Subtotal + out.Battery.Subtotal + out.Inverter.Subtotal
	return out, nil
}
