package usecase

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"app/internal/domain/model"
	repo "app/internal/repository"

	"go.uber.org/zap"
)

// SettingCache はキー別の設定キャッシュの約束。実装は infra/cache。
type SettingCache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value string) error
	Invalidate(ctx context.Context, key string) error
}

// 既知キーとデフォルト値。未設定キーはこの値で答える。
var settingDefaults = map[string]string{
	model.SettingKeyTaxRateBP:      "750",
	model.SettingKeyCurrency:       "NGN",
	model.SettingKeySupportEmail:   "support@example.com",
	model.SettingKeySupportPhone:   "",
	model.SettingKeyQuoteValidDays: "14",
}

type SettingsUsecase struct {
	settingRepo repo.SettingRepository
	auditRepo   repo.AuditLogRepository
	cache       SettingCache
	logger      *zap.Logger
}

func NewSettingsUsecase(
	settingRepo repo.SettingRepository,
	auditRepo repo.AuditLogRepository,
	cache SettingCache,
	logger *zap.Logger,
) *SettingsUsecase {
	return &SettingsUsecase{
		settingRepo: settingRepo,
		auditRepo:   auditRepo,
		cache:       cache,
		logger:      logger,
	}
}

// GetString はキャッシュ→DB→デフォルトの順で読む。
// キャッシュ障害は読みの失敗にしない（DBへフォールバック）。
func (u *SettingsUsecase) GetString(ctx context.Context, key string) (string, error) {
	if _, ok := settingDefaults[key]; !ok {
		return "", NewHTTPError(http.StatusBadRequest, "unknown setting key")
	}

	if v, err := u.cache.Get(ctx, key); err == nil {
		return v, nil
	}

	s, err := u.settingRepo.Get(ctx, key)
	if errors.Is(err, repo.ErrNotFound) {
		return settingDefaults[key], nil
	}
	if err != nil {
		return "", NewHTTPError(http.StatusInternalServerError, "db error")
	}

	//書き戻しは失敗してもいい
	if err := u.cache.Set(ctx, key, s.Value); err != nil {
		u.logger.Warn("setting cache set failed", zap.String("key", key), zap.Error(err))
	}
	return s.Value, nil
}

// GetInt は数値設定の読み出し。壊れた値はデフォルトに倒す。
func (u *SettingsUsecase) GetInt(ctx context.Context, key string) (int64, error) {
	v, err := u.GetString(ctx, key)
	if err != nil {
		return 0, err
	}
	n, convErr := strconv.ParseInt(v, 10, 64)
	if convErr != nil {
		u.logger.Warn("setting value not numeric, using default",
			zap.String("key", key), zap.String("value", v))
		n, _ = strconv.ParseInt(settingDefaults[key], 10, 64)
	}
	return n, nil
}

// PublicSettings はストアフロントへ出せる設定だけを返す。
func (u *SettingsUsecase) PublicSettings(ctx context.Context) (map[string]string, error) {
	out := map[string]string{}
	for _, key := range []string{
		model.SettingKeyCurrency,
		model.SettingKeySupportEmail,
		model.SettingKeySupportPhone,
	} {
		v, err := u.GetString(ctx, key)
		if err != nil {
			return nil, err
		}
		out[key] = v
	}
	return out, nil
}

// ListSettings は管理画面用。DBに無いキーはデフォルトで埋める。
func (u *SettingsUsecase) ListSettings(ctx context.Context, adminID int64) (map[string]string, error) {
	if adminID <= 0 {
		return nil, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	out := map[string]string{}
	for key, def := range settingDefaults {
		out[key] = def
	}

	rows, err := u.settingRepo.List(ctx)
	if err != nil {
		return nil, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	for _, s := range rows {
		if _, ok := settingDefaults[s.Key]; ok {
			out[s.Key] = s.Value
		}
	}
	return out, nil
}

// UpdateSetting は設定更新。更新後に該当キーのキャッシュだけ無効化する。
func (u *SettingsUsecase) UpdateSetting(ctx context.Context, adminID int64, key string, value string) error {
	if adminID <= 0 {
		return NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if _, ok := settingDefaults[key]; !ok {
		return NewHTTPError(http.StatusBadRequest, "unknown setting key")
	}
	value = strings.TrimSpace(value)
	if value == "" {
		return NewHTTPError(http.StatusBadRequest, "value required")
	}

	//数値キーの検証
	switch key {
	case model.SettingKeyTaxRateBP:
		n, err := strconv.ParseInt(value, 10, 64)
		if err != nil || n < 0 || n > 10000 {
			return NewHTTPError(http.StatusBadRequest, "invalid tax_rate_bp")
		}
	case model.SettingKeyQuoteValidDays:
		n, err := strconv.ParseInt(value, 10, 64)
		if err != nil || n < 1 || n > 365 {
			return NewHTTPError(http.StatusBadRequest, "invalid quote_valid_days")
		}
	}

	before, err := u.GetString(ctx, key)
	if err != nil {
		return err
	}

	if err := u.settingRepo.Upsert(ctx, key, value); err != nil {
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}

	//全flushではなく該当キーだけ無効化
	if err := u.cache.Invalidate(ctx, key); err != nil {
		u.logger.Warn("setting cache invalidate failed", zap.String("key", key), zap.Error(err))
	}

	if err := u.auditRepo.Create(ctx, model.AuditLog{
		ActorUserID:  adminID,
		Action:       model.AuditActionUpdateSetting,
		ResourceType: model.AuditResourceSetting,
		ResourceID:   0,
		BeforeJSON:   `{"key":"` + key + `","value":"` + before + `"}`,
		AfterJSON:    `{"key":"` + key + `","value":"` + value + `"}`,
		CreatedAt:    time.Now(),
	}); err != nil {
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return nil
}
