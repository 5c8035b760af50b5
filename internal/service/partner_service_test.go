package service

import (
	"context"
	"testing"

	"github.com/lunatickworker/casino-sub002/internal/model"
	"github.com/lunatickworker/casino-sub002/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreatePartner(t *testing.T) {
	ctx := context.Background()

	createRoot := func(t *testing.T, svc *PartnerService) *model.Partner {
		root, err := svc.CreatePartner(ctx, &CreatePartnerRequest{
			Username:       "head",
			Nickname:       "总公司",
			Level:          model.PartnerLevelHeadOffice,
			RollingRate:    mustDec(t, "1.0"),
			LosingRate:     mustDec(t, "5.0"),
			WithdrawalRate: mustDec(t, "0.5"),
		})
		require.NoError(t, err)
		return root
	}

	t.Run("RootAndChild", func(t *testing.T) {
		svc := NewPartnerService(setupTestDB(t))
		root := createRoot(t, svc)

		child, err := svc.CreatePartner(ctx, &CreatePartnerRequest{
			Username:       "main1",
			Nickname:       "主办事处",
			ParentID:       &root.ID,
			Level:          model.PartnerLevelMainOffice,
			RollingRate:    mustDec(t, "0.5"),
			LosingRate:     mustDec(t, "2.0"),
			WithdrawalRate: mustDec(t, "0.2"),
		})
		require.NoError(t, err)
		assert.Equal(t, root.ID, *child.ParentID)
		assert.Equal(t, model.PartnerStatusActive, child.Status)
	})

	t.Run("DuplicateUsername", func(t *testing.T) {
		svc := NewPartnerService(setupTestDB(t))
		createRoot(t, svc)

		_, err := svc.CreatePartner(ctx, &CreatePartnerRequest{
			Username: "head",
			Nickname: "重名",
			Level:    model.PartnerLevelHeadOffice,
		})
		assert.Error(t, err)
	})

	t.Run("ChildMustBeDeeper", func(t *testing.T) {
		svc := NewPartnerService(setupTestDB(t))
		root := createRoot(t, svc)

		_, err := svc.CreatePartner(ctx, &CreatePartnerRequest{
			Username: "peer",
			Nickname: "同级挂靠",
			ParentID: &root.ID,
			Level:    model.PartnerLevelHeadOffice,
		})
		assert.ErrorIs(t, err, repository.ErrHierarchyInvalid)
	})

	t.Run("ChildRatesCappedByParent", func(t *testing.T) {
		svc := NewPartnerService(setupTestDB(t))
		root := createRoot(t, svc)

		_, err := svc.CreatePartner(ctx, &CreatePartnerRequest{
			Username:    "greedy",
			Nickname:    "超比例",
			ParentID:    &root.ID,
			Level:       model.PartnerLevelMainOffice,
			RollingRate: mustDec(t, "2.0"), // 上级只有 1.0
		})
		assert.ErrorIs(t, err, repository.ErrHierarchyInvalid)
	})

	t.Run("MissingParent", func(t *testing.T) {
		svc := NewPartnerService(setupTestDB(t))
		missing := int64(999)

		_, err := svc.CreatePartner(ctx, &CreatePartnerRequest{
			Username: "orphan",
			Nickname: "孤儿",
			ParentID: &missing,
			Level:    model.PartnerLevelMainOffice,
		})
		assert.ErrorIs(t, err, repository.ErrParentNotFound)
	})

	t.Run("RootLevelRestricted", func(t *testing.T) {
		svc := NewPartnerService(setupTestDB(t))

		_, err := svc.CreatePartner(ctx, &CreatePartnerRequest{
			Username: "store_root",
			Nickname: "门店当根",
			Level:    model.PartnerLevelStore,
		})
		assert.ErrorIs(t, err, repository.ErrHierarchyInvalid)
	})
}

func TestUpdateRates(t *testing.T) {
	ctx := context.Background()
	svc := NewPartnerService(setupTestDB(t))

	root, err := svc.CreatePartner(ctx, &CreatePartnerRequest{
		Username:       "head",
		Nickname:       "总公司",
		Level:          model.PartnerLevelHeadOffice,
		RollingRate:    mustDec(t, "1.0"),
		LosingRate:     mustDec(t, "5.0"),
		WithdrawalRate: mustDec(t, "0.5"),
	})
	require.NoError(t, err)

	child, err := svc.CreatePartner(ctx, &CreatePartnerRequest{
		Username:       "main1",
		Nickname:       "主办事处",
		ParentID:       &root.ID,
		Level:          model.PartnerLevelMainOffice,
		RollingRate:    mustDec(t, "0.5"),
		LosingRate:     mustDec(t, "2.0"),
		WithdrawalRate: mustDec(t, "0.2"),
	})
	require.NoError(t, err)

	// 不得超过上级同类比例
	err = svc.UpdateRates(ctx, child.ID, mustDec(t, "1.5"), mustDec(t, "2.0"), mustDec(t, "0.2"))
	assert.ErrorIs(t, err, repository.ErrHierarchyInvalid)

	// 合法范围内可以调高
	err = svc.UpdateRates(ctx, child.ID, mustDec(t, "0.8"), mustDec(t, "3.0"), mustDec(t, "0.3"))
	require.NoError(t, err)

	got, err := svc.GetPartner(ctx, child.ID)
	require.NoError(t, err)
	assert.True(t, got.RollingRate.Equal(mustDec(t, "0.8")))
}
