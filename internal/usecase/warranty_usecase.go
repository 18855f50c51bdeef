package usecase

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"app/internal/domain/model"
	"app/internal/infra/pdfgen"
	repo "app/internal/repository"
)

// WarrantyUsecase は保証の照会・申請・管理者レビュー。
type WarrantyUsecase struct {
	tx        repo.TransactionManager
	auditRepo repo.AuditLogRepository
	renderer  *pdfgen.Renderer
}

func NewWarrantyUsecase(
	tx repo.TransactionManager,
	auditRepo repo.AuditLogRepository,
	renderer *pdfgen.Renderer,
) *WarrantyUsecase {
	return &WarrantyUsecase{
		tx:        tx,
		auditRepo: auditRepo,
		renderer:  renderer,
	}
}

type WarrantyOutput struct {
	ID                  int64     `json:"id"`
	Reference           string    `json:"reference"`
	ProductNameSnapshot string    `json:"product_name"`
	StartDate           time.Time `json:"start_date"`
	EndDate             time.Time `json:"end_date"`
	//読み出し時点で期限判定した実効ステータス
	Status string `json:"status"`
}

// DB上はACTIVEでも期限を過ぎていればEXPIREDとして見せる。
func toWarrantyOutput(w model.Warranty, now time.Time) WarrantyOutput {
	status := w.Status
	if status == model.WarrantyStatusActive && w.IsExpired(now) {
		status = model.WarrantyStatusExpired
	}
	return WarrantyOutput{
		ID:                  w.ID,
		Reference:           w.Reference,
		ProductNameSnapshot: w.ProductNameSnapshot,
		StartDate:           w.StartDate,
		EndDate:             w.EndDate,
		Status:              string(status),
	}
}

// ListByEmail は顧客の保証一覧。
func (u *WarrantyUsecase) ListByEmail(ctx context.Context, email string) ([]WarrantyOutput, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return nil, NewHTTPError(http.StatusBadRequest, "email required")
	}

	var out []WarrantyOutput
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		ws, err := r.Warranties().ListByEmail(ctx, email)
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		now := time.Now()
		out = make([]WarrantyOutput, 0, len(ws))
		for _, w := range ws {
			out = append(out, toWarrantyOutput(w, now))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

type WarrantyDetailOutput struct {
	Warranty WarrantyOutput        `json:"warranty"`
	Claims   []model.WarrantyClaim `json:"claims"`
}

// GetByReference は保証の詳細（申請履歴つき）。メール一致で本人確認する。
func (u *WarrantyUsecase) GetByReference(ctx context.Context, reference string, email string) (WarrantyDetailOutput, error) {
	reference = strings.TrimSpace(reference)
	email = strings.TrimSpace(email)
	if reference == "" || email == "" {
		return WarrantyDetailOutput{}, NewHTTPError(http.StatusBadRequest, "reference and email required")
	}

	var out WarrantyDetailOutput
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		w, err := u.findOwnedWarranty(ctx, r, reference, email)
		if err != nil {
			return err
		}

		claims, err := r.WarrantyClaims().ListByWarrantyID(ctx, w.ID)
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		out = WarrantyDetailOutput{
			Warranty: toWarrantyOutput(w, time.Now()),
			Claims:   claims,
		}
		return nil
	})
	if err != nil {
		return WarrantyDetailOutput{}, err
	}
	return out, nil
}

// RenderCertificate は保証書PDFを生成して返す。メール一致で本人確認する。
func (u *WarrantyUsecase) RenderCertificate(ctx context.Context, reference string, email string) ([]byte, string, error) {
	reference = strings.TrimSpace(reference)
	email = strings.TrimSpace(email)
	if reference == "" || email == "" {
		return nil, "", NewHTTPError(http.StatusBadRequest, "reference and email required")
	}

	var w model.Warranty
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		found, err := u.findOwnedWarranty(ctx, r, reference, email)
		if err != nil {
			return err
		}
		w = found
		return nil
	})
	if err != nil {
		return nil, "", err
	}

	//PDF上も実効ステータスで見せる
	if w.Status == model.WarrantyStatusActive && w.IsExpired(time.Now()) {
		w.Status = model.WarrantyStatusExpired
	}

	pdf, err := u.renderer.WarrantyCertificate(pdfgen.WarrantyDocument{Warranty: w})
	if err != nil {
		return nil, "", NewHTTPError(http.StatusInternalServerError, "pdf render failed")
	}
	return pdf, w.Reference + ".pdf", nil
}

// 参照番号で引いてメール一致まで確認する。不一致は存在ごと隠す。
func (u *WarrantyUsecase) findOwnedWarranty(ctx context.Context, r repo.TxRepos, reference string, email string) (model.Warranty, error) {
	w, err := r.Warranties().FindByReference(ctx, reference)
	if errors.Is(err, repo.ErrNotFound) {
		return model.Warranty{}, NewHTTPError(http.StatusNotFound, "not found")
	}
	if err != nil {
		return model.Warranty{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	if !strings.EqualFold(w.CustomerEmail, email) {
		return model.Warranty{}, NewHTTPError(http.StatusNotFound, "not found")
	}
	return w, nil
}

type SubmitClaimInput struct {
	Subject string
	Detail  string
}

// SubmitClaim は保証申請。ACTIVEかつ期限内の保証にだけ出せる。
// 申請行の作成と保証のCLAIMED化は同一トランザクション。片方だけ
// 残ると再申請が二重に通ってしまう。
func (u *WarrantyUsecase) SubmitClaim(ctx context.Context, reference string, email string, in SubmitClaimInput) (model.WarrantyClaim, error) {
	reference = strings.TrimSpace(reference)
	email = strings.TrimSpace(email)
	if reference == "" || email == "" {
		return model.WarrantyClaim{}, NewHTTPError(http.StatusBadRequest, "reference and email required")
	}
	if strings.TrimSpace(in.Subject) == "" {
		return model.WarrantyClaim{}, NewHTTPError(http.StatusBadRequest, "subject required")
	}

	var claim model.WarrantyClaim
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		w, err := u.findOwnedWarranty(ctx, r, reference, email)
		if err != nil {
			return err
		}

		if !w.CanBeClaimed(time.Now()) {
			return model.ErrWarrantyNotClaimable
		}

		created, err := r.WarrantyClaims().Create(ctx, model.WarrantyClaim{
			WarrantyID: w.ID,
			Subject:    strings.TrimSpace(in.Subject),
			Detail:     in.Detail,
			Status:     model.WarrantyClaimStatusSubmitted,
		})
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		//レビュー完了までの二重申請を防ぐ
		if err := r.Warranties().UpdateStatus(ctx, w.ID, model.WarrantyStatusClaimed); err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		claim = created
		return nil
	})
	if err != nil {
		return model.WarrantyClaim{}, err
	}
	return claim, nil
}

type AdminClaimListInput struct {
	Page   int
	Limit  int
	Status string
}

type AdminClaimListOutput struct {
	Items []model.WarrantyClaim `json:"items"`
	Total int64                 `json:"total"`
	Page  int                   `json:"page"`
	Limit int                   `json:"limit"`
}

func (u *WarrantyUsecase) ListClaims(ctx context.Context, adminID int64, in AdminClaimListInput) (AdminClaimListOutput, error) {
	if adminID <= 0 {
		return AdminClaimListOutput{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if in.Page < 1 {
		return AdminClaimListOutput{}, NewHTTPError(http.StatusBadRequest, "invalid page")
	}
	if in.Limit < 1 || in.Limit > 100 {
		return AdminClaimListOutput{}, NewHTTPError(http.StatusBadRequest, "invalid limit")
	}

	var out AdminClaimListOutput
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		items, total, err := r.WarrantyClaims().ListAdmin(ctx, in.Status, in.Page, in.Limit)
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		out = AdminClaimListOutput{Items: items, Total: total, Page: in.Page, Limit: in.Limit}
		return nil
	})
	if err != nil {
		return AdminClaimListOutput{}, err
	}
	return out, nil
}

type UpdateClaimInput struct {
	Status    string
	AdminNote string
}

// UpdateClaim は申請ステータスのレビュー遷移。許可リスト外は
// ErrInvalidClaimTransition。RESOLVEDで保証をレビュー前の状態へ
// 戻す。申請と保証の更新は同一トランザクション。
func (u *WarrantyUsecase) UpdateClaim(ctx context.Context, adminID int64, claimID int64, in UpdateClaimInput) error {
	if adminID <= 0 {
		return NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if claimID <= 0 {
		return NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	target := model.WarrantyClaimStatus(in.Status)
	switch target {
	case model.WarrantyClaimStatusUnderReview, model.WarrantyClaimStatusApproved,
		model.WarrantyClaimStatusRejected, model.WarrantyClaimStatusResolved:
		// OK
	default:
		return NewHTTPError(http.StatusBadRequest, "invalid status")
	}

	now := time.Now()
	var before model.WarrantyClaimStatus

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		c, err := r.WarrantyClaims().FindByID(ctx, claimID)
		if errors.Is(err, repo.ErrNotFound) {
			return NewHTTPError(http.StatusNotFound, "not found")
		}
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		if !model.CanTransitionClaim(c.Status, target) {
			return model.ErrInvalidClaimTransition
		}
		before = c.Status

		var resolvedAt *time.Time
		if target == model.WarrantyClaimStatusResolved {
			resolvedAt = &now
		}

		if err := r.WarrantyClaims().UpdateStatus(ctx, claimID, target, in.AdminNote, resolvedAt); err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		//解決したら保証をACTIVEへ戻す（期限切れなら次の読み出しでEXPIRED扱い）
		if target == model.WarrantyClaimStatusResolved {
			if err := r.Warranties().UpdateStatus(ctx, c.WarrantyID, model.WarrantyStatusActive); err != nil {
				return NewHTTPError(http.StatusInternalServerError, "db error")
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	_ = u.auditRepo.Create(ctx, model.AuditLog{
		ActorUserID:  adminID,
		Action:       model.AuditActionUpdateClaim,
		ResourceType: model.AuditResourceClaim,
		ResourceID:   claimID,
		BeforeJSON:   fmt.Sprintf(`{"status":"%s"}`, before),
		AfterJSON:    fmt.Sprintf(`{"status":"%s"}`, target),
		CreatedAt:    now,
	})
	return nil
}

// ExpireSweep は期限切れACTIVEをまとめてEXPIREDへ倒す（管理者の手動起動）。
func (u *WarrantyUsecase) ExpireSweep(ctx context.Context, adminID int64) (int64, error) {
	if adminID <= 0 {
		return 0, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	var n int64
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		marked, err := r.Warranties().MarkExpired(ctx, time.Now())
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		n = marked
		return nil
	})
	if err != nil {
		return 0, err
	}
	return n, nil
}
