package job_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"go.uber.org/zap/zaptest"

	"github.com/artem13815/shortlist/pkg/account"
	accountmocks "github.com/artem13815/shortlist/pkg/account/mocks"
	"github.com/artem13815/shortlist/pkg/document"
	"github.com/artem13815/shortlist/pkg/job"
	"github.com/artem13815/shortlist/pkg/job/mocks"
)

type serviceDeps struct {
	store      *mocks.MockStore
	accounts   *accountmocks.MockRepository
	dispatcher *mocks.MockDispatcher
	svc        job.UseCase
}

func newService(t *testing.T) serviceDeps {
	ctrl := gomock.NewController(t)
	d := serviceDeps{
		store:      mocks.NewMockStore(ctrl),
		accounts:   accountmocks.NewMockRepository(ctrl),
		dispatcher: mocks.NewMockDispatcher(ctrl),
	}
	d.svc = job.NewService(d.store, d.accounts, d.dispatcher, zaptest.NewLogger(t))
	return d
}

func tempFiles(t *testing.T, n int) []job.File {
	t.Helper()
	dir := t.TempDir()
	files := make([]job.File, n)
	for i := range files {
		path := filepath.Join(dir, uuid.NewString()+".txt")
		require.NoError(t, os.WriteFile(path, []byte("Jane Doe\ngo developer"), 0o600))
		files[i] = job.File{Path: path, Name: filepath.Base(path), Format: document.FormatText}
	}
	return files
}

func TestService_SubmitQueuesAndDispatches(t *testing.T) {
	d := newService(t)
	user := uuid.New()
	files := tempFiles(t, 2)

	d.accounts.EXPECT().Get(gomock.Any(), user).Return(account.Account{UserID: user, FreeTrialRemaining: 1, PaidCredits: 1}, nil)
	var created job.Job
	d.store.EXPECT().Create(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, j job.Job) error {
		created = j
		return nil
	})
	d.dispatcher.EXPECT().Dispatch(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, task job.Task) error {
		assert.Equal(t, created.ID, task.JobID)
		assert.Equal(t, files, task.Files)
		return nil
	})

	j, err := d.svc.Submit(context.Background(), job.Submission{UserID: user, Title: " Go dev ", Description: "go", Files: files})
	require.NoError(t, err)
	assert.Equal(t, job.StatusQueued, j.Status)
	assert.Equal(t, "Go dev", j.Title)
	assert.Equal(t, 2, j.Documents)
	for _, f := range files {
		assert.FileExists(t, f.Path)
	}
}

func TestService_SubmitRejectsWithoutEnoughCredits(t *testing.T) {
	d := newService(t)
	user := uuid.New()
	files := tempFiles(t, 3)

	d.accounts.EXPECT().Get(gomock.Any(), user).Return(account.Account{UserID: user, FreeTrialRemaining: 1, PaidCredits: 1}, nil)

	_, err := d.svc.Submit(context.Background(), job.Submission{UserID: user, Title: "t", Description: "d", Files: files})
	require.ErrorIs(t, err, job.ErrInsufficientCredits)
	for _, f := range files {
		assert.NoFileExists(t, f.Path)
	}
}

func TestService_SubmitValidatesInput(t *testing.T) {
	cases := map[string]job.Submission{
		"no title":       {Description: "d", Files: []job.File{{Path: "x"}}},
		"no description": {Title: "t", Files: []job.File{{Path: "x"}}},
		"no files":       {Title: "t", Description: "d"},
	}
	for name, sub := range cases {
		t.Run(name, func(t *testing.T) {
			d := newService(t)
			_, err := d.svc.Submit(context.Background(), sub)
			require.ErrorIs(t, err, job.ErrInvalidSubmission)
		})
	}
}

func TestService_SubmitMarksJobFailedWhenDispatchFails(t *testing.T) {
	d := newService(t)
	user := uuid.New()
	files := tempFiles(t, 1)
	boom := errors.New("broker down")

	d.accounts.EXPECT().Get(gomock.Any(), user).Return(account.Account{UserID: user, FreeTrialRemaining: 5}, nil)
	d.store.EXPECT().Create(gomock.Any(), gomock.Any()).Return(nil)
	d.dispatcher.EXPECT().Dispatch(gomock.Any(), gomock.Any()).Return(boom)
	d.store.EXPECT().MarkFailed(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)

	_, err := d.svc.Submit(context.Background(), job.Submission{UserID: user, Title: "t", Description: "d", Files: files})
	require.ErrorIs(t, err, boom)
	assert.NoFileExists(t, files[0].Path)
}

func TestService_SubmitPropagatesMissingAccount(t *testing.T) {
	d := newService(t)
	user := uuid.New()

	d.accounts.EXPECT().Get(gomock.Any(), user).Return(account.Account{}, account.ErrNotFound)

	_, err := d.svc.Submit(context.Background(), job.Submission{UserID: user, Title: "t", Description: "d", Files: tempFiles(t, 1)})
	require.ErrorIs(t, err, account.ErrNotFound)
}

func TestService_Usage(t *testing.T) {
	d := newService(t)
	user := uuid.New()

	d.accounts.EXPECT().Get(gomock.Any(), user).Return(account.Account{UserID: user, FreeTrialRemaining: 10, PaidCredits: 5}, nil)
	d.accounts.EXPECT().Usage(gomock.Any(), user).Return(account.UsageStats{UserID: user, TotalJobs: 2, TotalCandidates: 40}, nil)

	rep, err := d.svc.Usage(context.Background(), user)
	require.NoError(t, err)
	assert.Equal(t, 15, rep.RemainingBalance)
	assert.Equal(t, 40, rep.Stats.TotalCandidates)
}
