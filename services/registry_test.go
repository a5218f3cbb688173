package services

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	_ "github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/0xzenith/zenith-go/chain"
	"github.com/0xzenith/zenith-go/config"
	"github.com/0xzenith/zenith-go/errors"
	"github.com/0xzenith/zenith-go/txwatch"
	"github.com/0xzenith/zenith-go/types/requests"
	"github.com/0xzenith/zenith-go/types/responses"
)

const registryAddr = "0x2000000000000000000000000000000000000001"

// unreachableDB opens lazily and never connects; cache reads and writes
// fail fast with a dial error.
func unreachableDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("mysql", "root@tcp(127.0.0.1:1)/zenith_test?timeout=100ms")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func newTestRegistryService(t *testing.T, backend *chain.FakeBackend) (RegistryService, *config.Config) {
	t.Helper()
	cfg := testConfig()
	cfg.RegistryAddress = registryAddr
	tracker := txwatch.New(backend, txwatch.Config{
		Depth:        1,
		Wait:         time.Second,
		PollInterval: 2 * time.Millisecond,
	}, zap.NewNop())
	return NewRegistryService(cfg, backend, tracker, unreachableDB(t), nil, zap.NewNop()), cfg
}

func TestRegisterUser_WritesRegistryContract(t *testing.T) {
	backend := chain.NewFakeBackend()
	svc, _ := newTestRegistryService(t, backend)

	res, err := svc.RegisterUser(context.Background(), &requests.RegisterUserRequest{
		UserID:      "user-1",
		Address:     testOwner,
		CountryCode: "NG",
	})
	require.NoError(t, err)
	assert.Equal(t, "user-1", res.Data.UserID)
	assert.Equal(t, testOwner, res.Data.Address)
	assert.NotEmpty(t, res.Data.TxHash)
	assert.True(t, strings.HasPrefix(res.Data.ProfileBitmap, "0x"))
	assert.Len(t, res.Data.ProfileBitmap, 66)

	require.Equal(t, 1, backend.SubmitCount())
	spec := backend.Submitted[0]
	assert.Equal(t, common.HexToAddress(registryAddr), spec.Contract)
	assert.Equal(t, "addUser", spec.Method)
	require.Len(t, spec.Args, 3)
}

func TestUpdateProfile_WritesProfileData(t *testing.T) {
	backend := chain.NewFakeBackend()
	svc, _ := newTestRegistryService(t, backend)

	res, err := svc.UpdateProfile(context.Background(), &requests.UpdateProfileRequest{
		UserID:      "user-1",
		Address:     testOwner,
		CountryCode: "DE",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, res.Data.TxHash)

	require.Equal(t, 1, backend.SubmitCount())
	spec := backend.Submitted[0]
	assert.Equal(t, "addNewProfileData", spec.Method)
	require.Len(t, spec.Args, 2)
}

func TestRegisterUser_SubmissionDeclined(t *testing.T) {
	backend := chain.NewFakeBackend()
	backend.SubmitErr = fmt.Errorf("%w: user denied", chain.ErrSignerDeclined)
	svc, _ := newTestRegistryService(t, backend)

	_, err := svc.RegisterUser(context.Background(), &requests.RegisterUserRequest{
		UserID:      "user-1",
		Address:     testOwner,
		CountryCode: "NG",
	})
	require.Error(t, err)
	appErr := errors.AsAppError(err)
	assert.Equal(t, errors.ErrSubmission, appErr.Type)
	assert.Equal(t, errors.ReasonSignerDeclined, appErr.Reason)
}

func TestLookupProfile_ChainIsAuthoritative(t *testing.T) {
	backend := chain.NewFakeBackend()
	var stored [32]byte
	stored[0] = 0xaa
	backend.ProfileHashes[userIDHash("user-1")] = stored
	svc, _ := newTestRegistryService(t, backend)

	res, err := svc.LookupProfile(context.Background(), &requests.LookupRegistryRequest{
		UserID:  "user-1",
		Address: testOwner,
	})
	require.NoError(t, err)
	assert.Equal(t, responses.RegistrySourceChain, res.Data.Source)
	assert.True(t, strings.HasPrefix(res.Data.Profile.ProfileBitmap, "0xaa"))
}

func TestLookupProfile_ZeroHashIsNotFound(t *testing.T) {
	backend := chain.NewFakeBackend()
	backend.ProfileHashes[userIDHash("user-1")] = [32]byte{}
	svc, _ := newTestRegistryService(t, backend)

	_, err := svc.LookupProfile(context.Background(), &requests.LookupRegistryRequest{
		UserID:  "user-1",
		Address: testOwner,
	})
	require.Error(t, err)
	assert.Equal(t, errors.ErrNotFound, errors.AsAppError(err).Type)
}

func TestLookupProfile_ChainDownAndNoCacheFails(t *testing.T) {
	backend := chain.NewFakeBackend()
	backend.ProfileErr = fmt.Errorf("node unavailable")
	svc, _ := newTestRegistryService(t, backend)

	_, err := svc.LookupProfile(context.Background(), &requests.LookupRegistryRequest{
		UserID:  "user-1",
		Address: testOwner,
	})
	assert.Error(t, err)
}

func TestProfileBitmap_CaseInsensitiveInputs(t *testing.T) {
	a := profileBitmap("ng", strings.ToLower(testOwner))
	b := profileBitmap("NG", testOwner)
	assert.Equal(t, a, b)

	c := profileBitmap("DE", testOwner)
	assert.NotEqual(t, a, c)
}

func TestUserIDHash_Deterministic(t *testing.T) {
	assert.Equal(t, userIDHash("user-1"), userIDHash("user-1"))
	assert.NotEqual(t, userIDHash("user-1"), userIDHash("user-2"))
}
