package usecase

import (
	"context"
	"net/http"
	"testing"

	"app/internal/domain/model"
	repo "app/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"
)

func TestSettingsUsecase_GetString_CacheHitSkipsDB(t *testing.T) {
	ctx := context.Background()

	cache := new(settingCacheMock)
	cache.On("Get", mock.Anything, model.SettingKeyCurrency).Return("USD", nil)

	settingRepo := new(settingRepoMock)
	uc := NewSettingsUsecase(settingRepo, new(auditRepoMock), cache, zap.NewNop())

	v, err := uc.GetString(ctx, model.SettingKeyCurrency)
	assert.NoError(t, err)
	assert.Equal(t, "USD", v)

	settingRepo.AssertNotCalled(t, "Get", mock.Anything, mock.Anything)
}

func TestSettingsUsecase_GetString_MissReadsDBAndWritesBack(t *testing.T) {
	ctx := context.Background()

	cache := new(settingCacheMock)
	cache.On("Get", mock.Anything, model.SettingKeyCurrency).Return("", assert.AnError)
	cache.On("Set", mock.Anything, model.SettingKeyCurrency, "GHS").Return(nil)

	settingRepo := new(settingRepoMock)
	settingRepo.On("Get", mock.Anything, model.SettingKeyCurrency).Return(model.Setting{
		Key: model.SettingKeyCurrency, Value: "GHS",
	}, nil)

	uc := NewSettingsUsecase(settingRepo, new(auditRepoMock), cache, zap.NewNop())

	v, err := uc.GetString(ctx, model.SettingKeyCurrency)
	assert.NoError(t, err)
	assert.Equal(t, "GHS", v)

	cache.AssertExpectations(t)
}

func TestSettingsUsecase_GetString_UnsetKeyFallsBackToDefault(t *testing.T) {
	ctx := context.Background()

	cache := new(settingCacheMock)
	cache.On("Get", mock.Anything, mock.Anything).Return("", assert.AnError)

	settingRepo := new(settingRepoMock)
	settingRepo.On("Get", mock.Anything, mock.Anything).Return(model.Setting{}, repo.ErrNotFound)

	uc := NewSettingsUsecase(settingRepo, new(auditRepoMock), cache, zap.NewNop())

	v, err := uc.GetString(ctx, model.SettingKeyCurrency)
	assert.NoError(t, err)
	assert.Equal(t, "NGN", v)

	n, err := uc.GetInt(ctx, model.SettingKeyTaxRateBP)
	assert.NoError(t, err)
	assert.Equal(t, int64(750), n)
}

func TestSettingsUsecase_GetString_UnknownKey(t *testing.T) {
	uc := NewSettingsUsecase(new(settingRepoMock), new(auditRepoMock), new(settingCacheMock), zap.NewNop())

	_, err := uc.GetString(context.Background(), "no_such_key")
	assertHTTPStatus(t, err, http.StatusBadRequest)
}

func TestSettingsUsecase_GetInt_BrokenValueFallsBackToDefault(t *testing.T) {
	ctx := context.Background()

	cache := new(settingCacheMock)
	cache.On("Get", mock.Anything, model.SettingKeyTaxRateBP).Return("not-a-number", nil)

	uc := NewSettingsUsecase(new(settingRepoMock), new(auditRepoMock), cache, zap.NewNop())

	n, err := uc.GetInt(ctx, model.SettingKeyTaxRateBP)
	assert.NoError(t, err)
	assert.Equal(t, int64(750), n)
}

func TestSettingsUsecase_UpdateSetting_InvalidatesOnlyThatKey(t *testing.T) {
	ctx := context.Background()

	cache := new(settingCacheMock)
	cache.On("Get", mock.Anything, model.SettingKeyTaxRateBP).Return("750", nil)
	cache.On("Invalidate", mock.Anything, model.SettingKeyTaxRateBP).Return(nil)

	settingRepo := new(settingRepoMock)
	settingRepo.On("Upsert", mock.Anything, model.SettingKeyTaxRateBP, "500").Return(nil)

	audit := new(auditRepoMock)
	audit.On("Create", mock.Anything, mock.MatchedBy(func(l model.AuditLog) bool {
		return l.Action == model.AuditActionUpdateSetting && l.ActorUserID == 1
	})).Return(nil)

	uc := NewSettingsUsecase(settingRepo, audit, cache, zap.NewNop())

	err := uc.UpdateSetting(ctx, 1, model.SettingKeyTaxRateBP, "500")
	assert.NoError(t, err)

	cache.AssertExpectations(t)
	settingRepo.AssertExpectations(t)
	audit.AssertExpectations(t)
	//他キーのInvalidateは呼ばれない
	cache.AssertNumberOfCalls(t, "Invalidate", 1)
}

func TestSettingsUsecase_UpdateSetting_Validation(t *testing.T) {
	ctx := context.Background()
	uc := NewSettingsUsecase(new(settingRepoMock), new(auditRepoMock), new(settingCacheMock), zap.NewNop())

	//未知キー
	err := uc.UpdateSetting(ctx, 1, "no_such_key", "1")
	assertHTTPStatus(t, err, http.StatusBadRequest)

	//空値
	err = uc.UpdateSetting(ctx, 1, model.SettingKeyCurrency, "  ")
	assertHTTPStatus(t, err, http.StatusBadRequest)

	//税率の範囲外
	err = uc.UpdateSetting(ctx, 1, model.SettingKeyTaxRateBP, "10001")
	assertHTTPStatus(t, err, http.StatusBadRequest)
	err = uc.UpdateSetting(ctx, 1, model.SettingKeyTaxRateBP, "-1")
	assertHTTPStatus(t, err, http.StatusBadRequest)

	//見積有効日数の範囲外
	err = uc.UpdateSetting(ctx, 1, model.SettingKeyQuoteValidDays, "0")
	assertHTTPStatus(t, err, http.StatusBadRequest)
	err = uc.UpdateSetting(ctx, 1, model.SettingKeyQuoteValidDays, "366")
	assertHTTPStatus(t, err, http.StatusBadRequest)
}

func TestSettingsUsecase_PublicSettings_OnlyPublicKeys(t *testing.T) {
	ctx := context.Background()

	cache := new(settingCacheMock)
	cache.On("Get", mock.Anything, mock.Anything).Return("", assert.AnError)

	settingRepo := new(settingRepoMock)
	settingRepo.On("Get", mock.Anything, mock.Anything).Return(model.Setting{}, repo.ErrNotFound)

	uc := NewSettingsUsecase(settingRepo, new(auditRepoMock), cache, zap.NewNop())

	out, err := uc.PublicSettings(ctx)
	assert.NoError(t, err)

	assert.Contains(t, out, model.SettingKeyCurrency)
	assert.Contains(t, out, model.SettingKeySupportEmail)
	assert.Contains(t, out, model.SettingKeySupportPhone)
	//税率は公開しない
	assert.NotContains(t, out, model.SettingKeyTaxRateBP)
}
