package handlers

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/artem13815/shortlist/api/http/presenter"
	"github.com/artem13815/shortlist/pkg/account"
	"github.com/artem13815/shortlist/pkg/document"
	"github.com/artem13815/shortlist/pkg/job"
	"github.com/artem13815/shortlist/pkg/logger"
	"github.com/artem13815/shortlist/pkg/security/jwt"
)

// UploadLimits bound one submission.
type UploadLimits struct {
	Dir          string
	MaxFileBytes int64
	MaxFiles     int
}

type JobsHandler struct {
	uc     job.UseCase
	limits UploadLimits
	log    *zap.Logger
}

func NewJobsHandler(uc job.UseCase, limits UploadLimits, log *zap.Logger) *JobsHandler {
	if limits.Dir == "" {
		limits.Dir = "uploads"
	}
	if limits.MaxFileBytes <= 0 {
		limits.MaxFileBytes = 10 << 20
	}
	if limits.MaxFiles <= 0 {
		limits.MaxFiles = 100
	}
	return &JobsHandler{uc: uc, limits: limits, log: logger.WithFields(log)}
}

type jobCandidatesResponse struct {
	Job        job.Job                `json:"job"`
	Candidates []job.CandidateSummary `json:"candidates"`
}

// Submit принимает описание вакансии и пачку резюме, ставит задание в очередь.
// @Summary Создать задание на ранжирование
// @Description Принимает описание вакансии и файлы резюме (PDF, DOCX, TXT). Обработка идёт асинхронно.
// @Tags    Задания
// @Accept  multipart/form-data
// @Produce json
// @Param   title formData string true "Название вакансии"
// @Param   job_description formData string true "Текст вакансии"
// @Param   files formData file true "Файлы резюме"
// @Security BearerAuth
// @Success 202 {object} job.Job
// @Failure 400 {object} presenter.ErrorResponse "Ошибка валидации"
// @Failure 402 {object} presenter.ErrorResponse "Недостаточно кредитов"
// @Failure 500 {object} presenter.ErrorResponse "Внутренняя ошибка"
// @Router  /jobs [post]
func (h *JobsHandler) Submit(c *fiber.Ctx) error {
	uid, ok := jwt.UserID(c)
	if !ok {
		return unauthorized(c)
	}
	form, err := c.MultipartForm()
	if err != nil {
		return presenter.Error(c, http.StatusBadRequest, "ожидается multipart/form-data")
	}
	title := strings.TrimSpace(c.FormValue("title"))
	description := strings.TrimSpace(c.FormValue("job_description"))
	if title == "" || description == "" {
		return presenter.Error(c, http.StatusBadRequest, "title и job_description обязательны")
	}
	headers := form.File["files"]
	if len(headers) == 0 {
		return presenter.Error(c, http.StatusBadRequest, "нужно приложить хотя бы один файл")
	}
	if len(headers) > h.limits.MaxFiles {
		return presenter.Error(c, http.StatusBadRequest, fmt.Sprintf("слишком много файлов: максимум %d", h.limits.MaxFiles))
	}

	files, err := h.store(headers)
	if err != nil {
		return presenter.Error(c, http.StatusBadRequest, err.Error())
	}
	j, err := h.uc.Submit(c.Context(), job.Submission{UserID: uid, Title: title, Description: description, Files: files})
	if err != nil {
		return h.error(c, err)
	}
	return presenter.JSON(c, http.StatusAccepted, j)
}

// List
// @Summary Список заданий пользователя
// @Tags    Задания
// @Produce json
// @Param   limit query int false "Лимит (по умолчанию 20, максимум 200)"
// @Param   offset query int false "Смещение"
// @Security BearerAuth
// @Success 200 {object} presenter.Page[job.Job]
// @Failure 400 {object} presenter.ErrorResponse
// @Router  /jobs [get]
func (h *JobsHandler) List(c *fiber.Ctx) error {
	uid, ok := jwt.UserID(c)
	if !ok {
		return unauthorized(c)
	}
	limit, offset, err := parsePage(c)
	if err != nil {
		return presenter.Error(c, http.StatusBadRequest, err.Error())
	}
	jobs, err := h.uc.List(c.Context(), uid, limit, offset)
	if err != nil {
		return h.error(c, err)
	}
	return presenter.List(c, jobs, limit, offset)
}

// @Summary Получить задание по ID
// @Tags    Задания
// @Produce json
// @Param   id path string true "ID задания (UUID)"
// @Security BearerAuth
// @Success 200 {object} job.Job
// @Failure 404 {object} presenter.ErrorResponse
// @Router  /jobs/{id} [get]
func (h *JobsHandler) Get(c *fiber.Ctx) error {
	uid, ok := jwt.UserID(c)
	if !ok {
		return unauthorized(c)
	}
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return presenter.Error(c, http.StatusBadRequest, "некорректный id")
	}
	j, err := h.uc.Get(c.Context(), uid, id)
	if err != nil {
		return h.error(c, err)
	}
	return presenter.JSON(c, http.StatusOK, j)
}

// Candidates возвращает ранжированный список кандидатов; пока задание не
// завершено, список пуст.
// @Summary Кандидаты задания
// @Tags    Задания
// @Produce json
// @Param   id path string true "ID задания (UUID)"
// @Security BearerAuth
// @Success 200 {object} jobCandidatesResponse
// @Failure 404 {object} presenter.ErrorResponse
// @Router  /jobs/{id}/candidates [get]
func (h *JobsHandler) Candidates(c *fiber.Ctx) error {
	uid, ok := jwt.UserID(c)
	if !ok {
		return unauthorized(c)
	}
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return presenter.Error(c, http.StatusBadRequest, "некорректный id")
	}
	j, err := h.uc.Get(c.Context(), uid, id)
	if err != nil {
		return h.error(c, err)
	}
	cands, err := h.uc.Candidates(c.Context(), uid, id)
	if err != nil {
		return h.error(c, err)
	}
	return presenter.JSON(c, http.StatusOK, jobCandidatesResponse{Job: j, Candidates: cands})
}

// Usage
// @Summary Статистика использования и остаток кредитов
// @Tags    Аккаунт
// @Produce json
// @Security BearerAuth
// @Success 200 {object} job.UsageReport
// @Router  /usage [get]
func (h *JobsHandler) Usage(c *fiber.Ctx) error {
	uid, ok := jwt.UserID(c)
	if !ok {
		return unauthorized(c)
	}
	rep, err := h.uc.Usage(c.Context(), uid)
	if err != nil {
		return h.error(c, err)
	}
	return presenter.JSON(c, http.StatusOK, rep)
}

func unauthorized(c *fiber.Ctx) error {
	return presenter.Error(c, http.StatusUnauthorized, "не удалось определить пользователя")
}

func (h *JobsHandler) error(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, job.ErrInvalidSubmission):
		return presenter.Error(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, job.ErrInsufficientCredits):
		return presenter.Error(c, http.StatusPaymentRequired, "недостаточно кредитов: "+err.Error())
	case errors.Is(err, account.ErrNotFound):
		return presenter.Error(c, http.StatusForbidden, "аккаунт не найден")
	case errors.Is(err, job.ErrNotFound):
		return presenter.Error(c, http.StatusNotFound, "задание не найдено")
	}
	h.log.Error("request failed", zap.String("path", c.Path()), zap.Error(err))
	return presenter.Error(c, http.StatusInternalServerError, "внутренняя ошибка")
}

// store copies uploads into the upload dir under random names. Nothing is left
// behind when one of the files is rejected.
func (h *JobsHandler) store(headers []*multipart.FileHeader) (files []job.File, err error) {
	defer func() {
		if err != nil {
			for _, f := range files {
				_ = os.Remove(f.Path)
			}
			files = nil
		}
	}()
	if err := os.MkdirAll(h.limits.Dir, 0o755); err != nil {
		h.log.Error("upload dir", zap.Error(err))
		return nil, errors.New("не удалось подготовить хранилище")
	}
	for _, fh := range headers {
		format, err := document.ParseFormat(fh.Filename)
		if err != nil {
			return files, fmt.Errorf("%s: неподдерживаемый формат, допустимы pdf, docx, txt", fh.Filename)
		}
		data, err := readUpload(fh, h.limits.MaxFileBytes)
		if err != nil {
			return files, fmt.Errorf("%s: %v", fh.Filename, err)
		}
		dst := filepath.Join(h.limits.Dir, uuid.NewString()+format.Ext())
		if err := os.WriteFile(dst, data, 0o600); err != nil {
			h.log.Error("store upload", zap.String(logger.FieldFile, dst), zap.Error(err))
			return files, errors.New("не удалось сохранить файл")
		}
		files = append(files, job.File{Path: dst, Name: filepath.Base(fh.Filename), Format: format})
	}
	return files, nil
}

func readUpload(fh *multipart.FileHeader, max int64) ([]byte, error) {
	if fh.Size > max {
		return nil, fmt.Errorf("файл слишком большой: лимит %d байт", max)
	}
	f, err := fh.Open()
	if err != nil {
		return nil, errors.New("не удалось открыть файл")
	}
	defer f.Close()
	return readAtMost(f, max)
}

func readAtMost(f io.Reader, max int64) ([]byte, error) {
	limited := io.LimitReader(f, max+1)
	b, err := io.ReadAll(limited)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	if int64(len(b)) > max {
		return nil, fmt.Errorf("файл слишком большой: лимит %d байт", max)
	}
	return b, nil
}
