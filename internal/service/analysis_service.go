package service

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"os"
	"time"

	"github.com/anime-shed/ui-critic-go/internal/analyzer"
	"github.com/anime-shed/ui-critic-go/internal/cropper"
	apperrors "github.com/anime-shed/ui-critic-go/internal/errors"
	"github.com/anime-shed/ui-critic-go/internal/logger"
	"github.com/anime-shed/ui-critic-go/internal/observer"
	"github.com/anime-shed/ui-critic-go/internal/storage"
	"github.com/anime-shed/ui-critic-go/pkg/models"
	"github.com/anime-shed/ui-critic-go/pkg/validation"

	"github.com/sirupsen/logrus"
)

// AnalysisService turns an uploaded screenshot into a critique with cropped regions
type AnalysisService interface {
	Analyze(ctx context.Context, file *multipart.FileHeader) (*models.AnalysisResult, error)
}

type analysisService struct {
	uploads      storage.UploadStore
	critic       analyzer.Critic
	cropper      *cropper.Cropper
	validator    *validation.UploadValidator
	events       observer.Subject
	modelTimeout time.Duration
}

// NewAnalysisService creates the service. events may be nil.
func NewAnalysisService(
	uploads storage.UploadStore,
	critic analyzer.Critic,
	crops *cropper.Cropper,
	events observer.Subject,
	modelTimeout time.Duration,
) AnalysisService {
	if events == nil {
		events = observer.NewEventPublisher()
	}
	return &analysisService{
		uploads:      uploads,
		critic:       critic,
		cropper:      crops,
		validator:    validation.NewUploadValidator(),
		events:       events,
		modelTimeout: modelTimeout,
	}
}

// Analyze stores the upload temporarily, asks the model for a critique and crops every
// feedback region. The temporary upload is removed on every exit path. Item crop
// failures only null that item's URL.
func (s *analysisService) Analyze(ctx context.Context, file *multipart.FileHeader) (*models.AnalysisResult, error) {
	if file == nil {
		return nil, apperrors.NewInvalidRequestError(apperrors.MsgNoImage, nil)
	}

	start := time.Now()
	requestID := RequestIDFrom(ctx)
	s.events.NotifyObservers(ctx, observer.AnalysisEvent{
		EventType: observer.AnalysisStarted,
		RequestID: requestID,
		Filename:  file.Filename,
		Success:   true,
		Metadata:  map[string]interface{}{"size_bytes": file.Size},
	})

	result, err := s.analyze(ctx, requestID, file)
	if err != nil {
		s.events.NotifyObservers(ctx, observer.AnalysisEvent{
			EventType:      observer.AnalysisFailed,
			RequestID:      requestID,
			Filename:       file.Filename,
			ProcessingTime: time.Since(start),
			ErrorMessage:   err.Error(),
		})
		return nil, err
	}

	s.events.NotifyObservers(ctx, observer.AnalysisEvent{
		EventType:      observer.AnalysisCompleted,
		RequestID:      requestID,
		Filename:       file.Filename,
		ProcessingTime: time.Since(start),
		Success:        true,
		Metadata:       map[string]interface{}{"feedback_items": len(result.SpecificFeedback)},
	})
	return result, nil
}

func (s *analysisService) analyze(ctx context.Context, requestID string, file *multipart.FileHeader) (*models.AnalysisResult, error) {
	log := logger.ForRequest(requestID)

	tmpPath, err := s.uploads.Save(file)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to store upload", err)
	}
	defer func() {
		if err := s.uploads.Remove(tmpPath); err != nil {
			log.WithError(err).WithField("path", tmpPath).Error("Failed to delete temporary upload")
			return
		}
		log.WithField("path", tmpPath).Debug("Deleted temporary upload")
	}()

	data, err := os.ReadFile(tmpPath)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to read upload", err)
	}

	mimeType, err := s.validator.ResolveMIMEType(file.Header.Get("Content-Type"), data)
	if err != nil {
		return nil, err
	}

	result, err := s.critique(ctx, log, analyzer.Image{Data: data, MIMEType: mimeType})
	if err != nil {
		return nil, err
	}
	s.events.NotifyObservers(ctx, observer.AnalysisEvent{
		EventType: observer.ModelResponded,
		RequestID: requestID,
		Success:   true,
		Metadata:  map[string]interface{}{"feedback_items": len(result.SpecificFeedback)},
	})

	src, err := cropper.Decode(data)
	if err != nil {
		log.WithError(err).WithField("mime_type", mimeType).Warn("Cannot decode upload, every crop will fail")
	}

	// Crops run to completion even if the request deadline passes meanwhile
	outcomes := s.cropper.CropAll(context.WithoutCancel(ctx), src, result.SpecificFeedback)
	for i, outcome := range outcomes {
		item := &result.SpecificFeedback[i]
		item.CroppedImageURL = outcome.URL

		if outcome.Err != nil {
			log.WithError(outcome.Err).WithFields(logrus.Fields{
				"item":        i,
				"coordinates": item.CropCoordinates.String(),
			}).Warn("Failed to crop feedback region")
			s.events.NotifyObservers(ctx, observer.AnalysisEvent{
				EventType:    observer.CropFailed,
				RequestID:    requestID,
				ErrorMessage: outcome.Err.Error(),
			})
			continue
		}
		s.events.NotifyObservers(ctx, observer.AnalysisEvent{
			EventType: observer.CropCreated,
			RequestID: requestID,
			Success:   true,
			Metadata:  map[string]interface{}{"url": *outcome.URL},
		})
	}

	return result, nil
}

func (s *analysisService) critique(ctx context.Context, log *logrus.Entry, img analyzer.Image) (*models.AnalysisResult, error) {
	modelCtx, cancel := context.WithTimeout(ctx, s.modelTimeout)
	defer cancel()

	start := time.Now()
	result, err := s.critic.Critique(modelCtx, img)
	if err != nil {
		var parseErr *analyzer.ReplyParseError
		if errors.As(err, &parseErr) {
			log.WithError(parseErr.Err).WithField("raw_response", parseErr.Raw).Error("Failed to parse model response")
		}
		return nil, apperrors.FromModelError(err)
	}
	if result == nil {
		return nil, apperrors.NewUpstreamError(fmt.Errorf("model returned an empty result"))
	}

	log.WithFields(logrus.Fields{
		"mime_type":      img.MIMEType,
		"duration_ms":    time.Since(start).Milliseconds(),
		"feedback_items": len(result.SpecificFeedback),
	}).Info("Received critique from model")
	return result, nil
}
