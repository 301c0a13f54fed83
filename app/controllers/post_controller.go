package controllers

import (
	"bytes"
	"errors"
	"io"
	"strconv"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	fiberlog "github.com/gofiber/fiber/v2/log"
	"gorm.io/gorm"

	"github.com/pulsefeed/pulsefeed/app/models"
	"github.com/pulsefeed/pulsefeed/app/repository"
	"github.com/pulsefeed/pulsefeed/internal/pkg/mediaingest"
	"github.com/pulsefeed/pulsefeed/internal/pkg/metrics/counter"
	"github.com/pulsefeed/pulsefeed/internal/pkg/s3backup"
	"github.com/pulsefeed/pulsefeed/internal/pkg/storage"
	"github.com/pulsefeed/pulsefeed/internal/pkg/usercontext"
)

const sniffHeadSize = 512

type createPostRequest struct {
	Description string `validate:"max=2000"`
	TopicID     uint   `validate:"required"`
}

var postValidator = validator.New()

var (
	ingestor     *mediaingest.Ingestor
	ingestorOnce sync.Once
)

// getIngestor returns the shared pipeline, bounded once per process
func getIngestor() *mediaingest.Ingestor {
	ingestorOnce.Do(func() {
		ingestor = mediaingest.NewIngestor(storage.NewMediaStore(""))
	})
	return ingestor
}

// HandleCreatePost accepts a multipart upload (file, description, topic_id),
// runs the media through the ingestion pipeline and persists the post.
func HandleCreatePost(c *fiber.Ctx) error {
	user := usercontext.GetUserContext(c)
	if !user.IsLoggedIn {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized"})
	}

	topicID, err := strconv.ParseUint(c.FormValue("topic_id"), 10, 32)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "bad_request", "message": "topic_id must be a positive integer"})
	}

	req := createPostRequest{
		Description: c.FormValue("description"),
		TopicID:     uint(topicID),
	}
	if err := postValidator.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "bad_request", "message": "invalid post fields"})
	}

	topicRepo := repository.GetGlobalFactory().GetTopicRepository()
	exists, err := topicRepo.Exists(req.TopicID)
	if err != nil {
		fiberlog.Errorf("[Post] Topic lookup failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error"})
	}
	if !exists {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "not_found", "message": "topic does not exist"})
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "bad_request", "message": "file is required"})
	}

	src, err := fileHeader.Open()
	if err != nil {
		fiberlog.Errorf("[Post] Could not open uploaded file: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error"})
	}
	defer src.Close()

	// Peek at the first bytes so scriptable content is rejected before any
	// disk write, then stitch the reader back together.
	head := make([]byte, sniffHeadSize)
	n, err := io.ReadFull(src, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		fiberlog.Errorf("[Post] Could not read uploaded file: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error"})
	}
	head = head[:n]
	if err := mediaingest.SniffHead(head); err != nil {
		return mapIngestError(c, err)
	}

	asset, err := getIngestor().Ingest(c.Context(), mediaingest.RawUpload{
		Reader:       io.MultiReader(bytes.NewReader(head), src),
		FileName:     fileHeader.Filename,
		DeclaredMIME: fileHeader.Header.Get("Content-Type"),
		DeclaredSize: fileHeader.Size,
	})
	if err != nil {
		fiberlog.Errorf("[Post] Ingestion failed for user %d: %v", user.UserID, err)
		return mapIngestError(c, err)
	}

	store := getIngestor().Store
	post := &models.Post{
		UUID:            asset.UploadID,
		UserID:          user.UserID,
		TopicID:         req.TopicID,
		Description:     req.Description,
		FileURL:         store.PublicURL(asset.StoragePath),
		FileType:        string(asset.Kind),
		FileSize:        asset.ByteSize,
		ThumbnailURL:    store.PublicURL(asset.ThumbnailPath),
		DurationSeconds: asset.DurationSeconds,
		Width:           asset.Width,
		Height:          asset.Height,
		CameraModel:     asset.CameraModel,
		TakenAt:         asset.TakenAt,
	}

	postRepo := repository.GetGlobalFactory().GetPostRepository()
	if err := postRepo.Create(post); err != nil {
		fiberlog.Errorf("[Post] Persisting post failed: %v", err)
		store.Remove(asset.StoragePath)
		store.Remove(asset.ThumbnailPath)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error"})
	}

	s3backup.BackupAsset(asset.StoragePath, asset.ThumbnailPath)

	return c.Status(fiber.StatusCreated).JSON(postResponse(post))
}

// HandleGetPost returns a single post by UUID
func HandleGetPost(c *fiber.Ctx) error {
	uuid := c.Params("uuid")
	if uuid == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "bad_request", "message": "uuid missing"})
	}

	postRepo := repository.GetGlobalFactory().GetPostRepository()
	post, err := postRepo.GetByUUID(uuid)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "not_found"})
		}
		fiberlog.Errorf("[Post] Lookup failed for %s: %v", uuid, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error"})
	}

	if err := counter.AddPostView(post.ID); err != nil {
		fiberlog.Debugf("[Post] View counter unavailable: %v", err)
	}

	return c.JSON(postResponse(post))
}

// HandleIngestStatus reports the pipeline state of an upload
func HandleIngestStatus(c *fiber.Ctx) error {
	uuid := c.Params("uuid")
	if uuid == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "bad_request", "message": "uuid missing"})
	}

	status, err := mediaingest.GetIngestStatus(uuid)
	if err != nil || status == "" {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "not_found", "message": "no ingestion status for this upload"})
	}

	return c.JSON(fiber.Map{
		"upload_id": uuid,
		"status":    status,
		"complete":  status == mediaingest.StatusFinalized,
	})
}

// HandleListTopics returns all topics available for posting
func HandleListTopics(c *fiber.Ctx) error {
	topicRepo := repository.GetGlobalFactory().GetTopicRepository()
	topics, err := topicRepo.List()
	if err != nil {
		fiberlog.Errorf("[Topic] Listing failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error"})
	}
	return c.JSON(fiber.Map{"topics": topics})
}

// HandleListTopicPosts returns posts in a topic, newest first, paginated
func HandleListTopicPosts(c *fiber.Ctx) error {
	topicID, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "bad_request", "message": "topic id must be a positive integer"})
	}

	page := c.QueryInt("page", 1)
	if page < 1 {
		page = 1
	}
	limit := c.QueryInt("limit", 20)
	if limit < 1 || limit > 100 {
		limit = 20
	}

	postRepo := repository.GetGlobalFactory().GetPostRepository()
	posts, err := postRepo.GetByTopicID(uint(topicID), (page-1)*limit, limit)
	if err != nil {
		fiberlog.Errorf("[Post] Topic feed failed for %d: %v", topicID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error"})
	}

	items := make([]fiber.Map, 0, len(posts))
	for i := range posts {
		items = append(items, postResponse(&posts[i]))
	}
	return c.JSON(fiber.Map{"posts": items, "page": page, "limit": limit})
}

// postResponse is the JSON shape shared by all post endpoints
func postResponse(post *models.Post) fiber.Map {
	resp := fiber.Map{
		"uuid":          post.UUID,
		"user_id":       post.UserID,
		"topic_id":      post.TopicID,
		"description":   post.Description,
		"file_url":      post.FileURL,
		"file_type":     post.FileType,
		"file_size":     post.FileSize,
		"thumbnail_url": post.ThumbnailURL,
		"view_count":    post.ViewCount,
		"created_at":    post.CreatedAt,
	}
	if post.DurationSeconds != nil {
		resp["duration_seconds"] = *post.DurationSeconds
	}
	if post.Width > 0 {
		resp["width"] = post.Width
		resp["height"] = post.Height
	}
	if post.CameraModel != nil {
		resp["camera_model"] = *post.CameraModel
	}
	if post.TakenAt != nil {
		resp["taken_at"] = *post.TakenAt
	}
	return resp
}
