package usecase

import (
	"context"
	"net/http"
	"testing"
	"time"

	"app/internal/domain/model"
	repo "app/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func newWarrantyTestRig() (*txManagerMock, *warrantyRepoMock, *claimRepoMock, *auditRepoMock, *WarrantyUsecase) {
	tx := new(txManagerMock)
	warranties := new(warrantyRepoMock)
	claims := new(claimRepoMock)
	tx.Repos = &txReposStub{warranties: warranties, claims: claims}
	tx.On("WithinTx", mock.Anything).Return(nil)

	audit := new(auditRepoMock)
	uc := NewWarrantyUsecase(tx, audit, nil)
	return tx, warranties, claims, audit, uc
}

func TestWarrantyUsecase_ListByEmail_ExpiredActiveIsShownExpired(t *testing.T) {
	ctx := context.Background()
	_, warranties, _, _, uc := newWarrantyTestRig()

	warranties.On("ListByEmail", mock.Anything, "a@example.com").Return([]model.Warranty{
		{ID: 1, Reference: "WTY-a", Status: model.WarrantyStatusActive, EndDate: time.Now().AddDate(1, 0, 0)},
		{ID: 2, Reference: "WTY-b", Status: model.WarrantyStatusActive, EndDate: time.Now().AddDate(-1, 0, 0)},
	}, nil)

	out, err := uc.ListByEmail(ctx, "a@example.com")
	assert.NoError(t, err)
	assert.Len(t, out, 2)
	assert.Equal(t, string(model.WarrantyStatusActive), out[0].Status)
	//DBはACTIVEのままでも読み出しはEXPIREDで見せる
	assert.Equal(t, string(model.WarrantyStatusExpired), out[1].Status)
}

func TestWarrantyUsecase_SubmitClaim_Success(t *testing.T) {
	ctx := context.Background()
	_, warranties, claims, _, uc := newWarrantyTestRig()

	warranties.On("FindByReference", mock.Anything, "WTY-a").Return(model.Warranty{
		ID: 1, Reference: "WTY-a", CustomerEmail: "a@example.com",
		Status: model.WarrantyStatusActive, EndDate: time.Now().AddDate(1, 0, 0),
	}, nil)
	claims.On("Create", mock.Anything, mock.MatchedBy(func(c model.WarrantyClaim) bool {
		return c.WarrantyID == 1 &&
			c.Subject == "inverter fault" &&
			c.Status == model.WarrantyClaimStatusSubmitted
	})).Return(model.WarrantyClaim{ID: 7, WarrantyID: 1, Status: model.WarrantyClaimStatusSubmitted}, nil)
	//レビュー完了までの二重申請を防ぐ
	warranties.On("UpdateStatus", mock.Anything, int64(1), model.WarrantyStatusClaimed).Return(nil)

	claim, err := uc.SubmitClaim(ctx, "WTY-a", "A@Example.com", SubmitClaimInput{
		Subject: " inverter fault ", Detail: "no output since monday",
	})
	assert.NoError(t, err)
	assert.Equal(t, int64(7), claim.ID)

	warranties.AssertExpectations(t)
	claims.AssertExpectations(t)
}

func TestWarrantyUsecase_SubmitClaim_WritesStayInOneTransaction(t *testing.T) {
	ctx := context.Background()
	tx, warranties, claims, _, uc := newWarrantyTestRig()

	warranties.On("FindByReference", mock.Anything, "WTY-a").Return(model.Warranty{
		ID: 1, Reference: "WTY-a", CustomerEmail: "a@example.com",
		Status: model.WarrantyStatusActive, EndDate: time.Now().AddDate(1, 0, 0),
	}, nil)
	claims.On("Create", mock.Anything, mock.Anything).Return(model.WarrantyClaim{ID: 7, WarrantyID: 1}, nil)
	//保証のCLAIMED化が失敗したらトランザクションごと失敗する。
	//申請行だけ残って再申請が二重に通る穴を塞ぐ
	warranties.On("UpdateStatus", mock.Anything, int64(1), model.WarrantyStatusClaimed).Return(assert.AnError)

	_, err := uc.SubmitClaim(ctx, "WTY-a", "a@example.com", SubmitClaimInput{Subject: "inverter fault"})
	assertHTTPStatus(t, err, http.StatusInternalServerError)

	//両方の書き込みが同じWithinTxの中で行われている
	tx.AssertNumberOfCalls(t, "WithinTx", 1)
	claims.AssertCalled(t, "Create", mock.Anything, mock.Anything)
	warranties.AssertCalled(t, "UpdateStatus", mock.Anything, int64(1), model.WarrantyStatusClaimed)
}

func TestWarrantyUsecase_SubmitClaim_ExpiredIsNotClaimable(t *testing.T) {
	ctx := context.Background()
	_, warranties, claims, _, uc := newWarrantyTestRig()

	warranties.On("FindByReference", mock.Anything, "WTY-a").Return(model.Warranty{
		ID: 1, Reference: "WTY-a", CustomerEmail: "a@example.com",
		Status: model.WarrantyStatusActive, EndDate: time.Now().AddDate(0, 0, -1),
	}, nil)

	_, err := uc.SubmitClaim(ctx, "WTY-a", "a@example.com", SubmitClaimInput{Subject: "x"})
	assert.ErrorIs(t, err, model.ErrWarrantyNotClaimable)

	claims.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestWarrantyUsecase_SubmitClaim_ClaimedBlocksSecondClaim(t *testing.T) {
	ctx := context.Background()
	_, warranties, claims, _, uc := newWarrantyTestRig()

	warranties.On("FindByReference", mock.Anything, "WTY-a").Return(model.Warranty{
		ID: 1, Reference: "WTY-a", CustomerEmail: "a@example.com",
		Status: model.WarrantyStatusClaimed, EndDate: time.Now().AddDate(1, 0, 0),
	}, nil)

	_, err := uc.SubmitClaim(ctx, "WTY-a", "a@example.com", SubmitClaimInput{Subject: "x"})
	assert.ErrorIs(t, err, model.ErrWarrantyNotClaimable)

	claims.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestWarrantyUsecase_SubmitClaim_EmailMustMatch(t *testing.T) {
	ctx := context.Background()
	_, warranties, _, _, uc := newWarrantyTestRig()

	warranties.On("FindByReference", mock.Anything, "WTY-a").Return(model.Warranty{
		ID: 1, Reference: "WTY-a", CustomerEmail: "a@example.com",
		Status: model.WarrantyStatusActive, EndDate: time.Now().AddDate(1, 0, 0),
	}, nil)

	_, err := uc.SubmitClaim(ctx, "WTY-a", "someone@else.com", SubmitClaimInput{Subject: "x"})
	assertHTTPStatus(t, err, http.StatusNotFound)
}

func TestWarrantyUsecase_UpdateClaim_RejectsOffListTransition(t *testing.T) {
	ctx := context.Background()
	_, _, claims, _, uc := newWarrantyTestRig()

	claims.On("FindByID", mock.Anything, int64(7)).Return(model.WarrantyClaim{
		ID: 7, WarrantyID: 1, Status: model.WarrantyClaimStatusSubmitted,
	}, nil)

	//SUBMITTEDから直接APPROVEDへは飛べない
	err := uc.UpdateClaim(ctx, 1, 7, UpdateClaimInput{Status: "APPROVED"})
	assert.ErrorIs(t, err, model.ErrInvalidClaimTransition)

	claims.AssertNotCalled(t, "UpdateStatus",
		mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestWarrantyUsecase_UpdateClaim_UnknownStatus(t *testing.T) {
	ctx := context.Background()
	tx, _, claims, _, uc := newWarrantyTestRig()

	err := uc.UpdateClaim(ctx, 1, 7, UpdateClaimInput{Status: "DONE"})
	assertHTTPStatus(t, err, http.StatusBadRequest)

	tx.AssertNotCalled(t, "WithinTx", mock.Anything)
	claims.AssertNotCalled(t, "FindByID", mock.Anything, mock.Anything)
}

func TestWarrantyUsecase_UpdateClaim_ResolvedRestoresWarranty(t *testing.T) {
	ctx := context.Background()
	tx, warranties, claims, audit, uc := newWarrantyTestRig()

	claims.On("FindByID", mock.Anything, int64(7)).Return(model.WarrantyClaim{
		ID: 7, WarrantyID: 1, Status: model.WarrantyClaimStatusApproved,
	}, nil)
	claims.On("UpdateStatus", mock.Anything, int64(7), model.WarrantyClaimStatusResolved,
		"replaced inverter", mock.MatchedBy(func(ts *time.Time) bool {
			return ts != nil
		})).Return(nil)
	warranties.On("UpdateStatus", mock.Anything, int64(1), model.WarrantyStatusActive).Return(nil)
	audit.On("Create", mock.Anything, mock.MatchedBy(func(l model.AuditLog) bool {
		return l.Action == model.AuditActionUpdateClaim && l.ResourceID == 7
	})).Return(nil)

	err := uc.UpdateClaim(ctx, 1, 7, UpdateClaimInput{Status: "RESOLVED", AdminNote: "replaced inverter"})
	assert.NoError(t, err)

	//申請と保証の更新は同一トランザクション
	tx.AssertNumberOfCalls(t, "WithinTx", 1)
	warranties.AssertExpectations(t)
	claims.AssertExpectations(t)
	audit.AssertExpectations(t)
}

func TestWarrantyUsecase_UpdateClaim_UnderReviewKeepsWarrantyClaimed(t *testing.T) {
	ctx := context.Background()
	_, warranties, claims, audit, uc := newWarrantyTestRig()

	claims.On("FindByID", mock.Anything, int64(7)).Return(model.WarrantyClaim{
		ID: 7, WarrantyID: 1, Status: model.WarrantyClaimStatusSubmitted,
	}, nil)
	claims.On("UpdateStatus", mock.Anything, int64(7), model.WarrantyClaimStatusUnderReview,
		"", (*time.Time)(nil)).Return(nil)
	audit.On("Create", mock.Anything, mock.Anything).Return(nil)

	err := uc.UpdateClaim(ctx, 1, 7, UpdateClaimInput{Status: "UNDER_REVIEW"})
	assert.NoError(t, err)

	warranties.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything)
}

func TestWarrantyUsecase_GetByReference_NotFoundAndMismatchLookAlike(t *testing.T) {
	ctx := context.Background()
	_, warranties, claims, _, uc := newWarrantyTestRig()

	warranties.On("FindByReference", mock.Anything, "WTY-x").Return(model.Warranty{}, repo.ErrNotFound)
	warranties.On("FindByReference", mock.Anything, "WTY-a").Return(model.Warranty{
		ID: 1, Reference: "WTY-a", CustomerEmail: "a@example.com",
	}, nil)

	_, err := uc.GetByReference(ctx, "WTY-x", "a@example.com")
	assertHTTPStatus(t, err, http.StatusNotFound)

	//メール不一致も同じ404で存在を漏らさない
	_, err = uc.GetByReference(ctx, "WTY-a", "someone@else.com")
	assertHTTPStatus(t, err, http.StatusNotFound)

	claims.AssertNotCalled(t, "ListByWarrantyID", mock.Anything, mock.Anything)
}

func TestWarrantyUsecase_ExpireSweep(t *testing.T) {
	ctx := context.Background()
	_, warranties, _, _, uc := newWarrantyTestRig()

	warranties.On("MarkExpired", mock.Anything, mock.Anything).Return(int64(4), nil)

	n, err := uc.ExpireSweep(ctx, 1)
	assert.NoError(t, err)
	assert.Equal(t, int64(4), n)

	_, err = uc.ExpireSweep(ctx, 0)
	assertHTTPStatus(t, err, http.StatusUnauthorized)
}
