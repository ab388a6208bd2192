package service

import (
	"context"
	"encoding/binary"
	"fmt"
	"image"
	"io"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/slotmail/internal/config"
	"github.com/slotmail/internal/logger"
	"github.com/slotmail/internal/storage"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/google/uuid"
)

// UploadService 预订素材上传服务
type UploadService struct {
	cfg      config.UploadConfig
	store    storage.BlobStore
	bookings *BookingService
}

// NewUploadService 创建上传服务实例
func NewUploadService(cfg config.UploadConfig, store storage.BlobStore, bookings *BookingService) *UploadService {
	return &UploadService{cfg: cfg, store: store, bookings: bookings}
}

// UploadInput 上传参数
type UploadInput struct {
	BookingID uint
	UserID    uint
	Kind      string
	Filename  string
	Size      int64
	File      io.ReadSeeker
}

// UploadResult 上传结果
type UploadResult struct {
	Path        string `json:"path"`
	ContentType string `json:"content_type"`
	Kind        string `json:"kind"`
}

// UploadBookingFile 校验并保存预订文件；设计稿上传会把审核状态推进到 under_review
func (s *UploadService) UploadBookingFile(ctx context.Context, input UploadInput) (*UploadResult, error) {
	if _, ok := bookingFileColumns[input.Kind]; !ok {
		return nil, ErrBookingFileKindInvalid
	}
	if input.File == nil || input.Size <= 0 {
		return nil, fmt.Errorf("%w: empty file", ErrUploadInvalid)
	}
	if s.cfg.MaxSize > 0 && input.Size > s.cfg.MaxSize {
		return nil, fmt.Errorf("%w: file exceeds %d MB", ErrUploadInvalid, s.cfg.MaxSize/1024/1024)
	}

	ext := strings.ToLower(filepath.Ext(input.Filename))
	if len(s.cfg.AllowedExtensions) > 0 {
		if ext == "" || !isAllowedExtension(ext, s.cfg.AllowedExtensions) {
			return nil, fmt.Errorf("%w: extension %q not allowed", ErrUploadInvalid, ext)
		}
	}

	contentType, err := sniffContentType(input.File)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUploadInvalid, err)
	}
	if len(s.cfg.AllowedTypes) > 0 && !containsFold(s.cfg.AllowedTypes, contentType) {
		return nil, fmt.Errorf("%w: content type %s not allowed", ErrUploadInvalid, contentType)
	}
	if strings.HasPrefix(contentType, "image/") {
		width, height, err := decodeImageDimensions(input.File, contentType)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrUploadInvalid, err)
		}
		if s.cfg.MaxWidth > 0 && width > s.cfg.MaxWidth {
			return nil, fmt.Errorf("%w: image wider than %d", ErrUploadInvalid, s.cfg.MaxWidth)
		}
		if s.cfg.MaxHeight > 0 && height > s.cfg.MaxHeight {
			return nil, fmt.Errorf("%w: image taller than %d", ErrUploadInvalid, s.cfg.MaxHeight)
		}
	}
	if _, err := input.File.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUploadInvalid, err)
	}

	// 先校验预订归属再写存储
	booking, err := s.bookings.GetUserBooking(ctx, input.BookingID, input.UserID)
	if err != nil {
		return nil, err
	}
	if booking.IsCancelled() {
		return nil, ErrBookingCancelled
	}

	key := bookingFileKey(booking.ID, input.Kind, ext)
	path, err := s.store.Put(ctx, key, input.File, input.Size, contentType)
	if err != nil {
		return nil, upstream(ErrStorageFailure, err)
	}

	_, previous, err := s.bookings.AttachFile(ctx, booking.ID, input.UserID, input.Kind, path)
	if err != nil {
		if delErr := s.store.Delete(ctx, path); delErr != nil {
			logger.Warnw("upload_rollback_delete_failed", "booking_id", booking.ID, "path", path, "error", delErr)
		}
		return nil, err
	}
	if previous != "" && previous != path {
		if delErr := s.store.Delete(ctx, previous); delErr != nil {
			logger.Warnw("upload_previous_delete_failed", "booking_id", booking.ID, "path", previous, "error", delErr)
		}
	}
	logger.Infow("booking_file_uploaded", "booking_id", booking.ID, "kind", input.Kind, "content_type", contentType, "size", input.Size)
	return &UploadResult{Path: path, ContentType: contentType, Kind: input.Kind}, nil
}

func bookingFileKey(bookingID uint, kind, ext string) string {
	return "bookings/" + strconv.FormatUint(uint64(bookingID), 10) + "/" + kind + "/" + uuid.New().String() + ext
}

func sniffContentType(src io.ReadSeeker) (string, error) {
	if _, err := src.Seek(0, io.SeekStart); err != nil {
		return "", err
	}
	buffer := make([]byte, 512)
	n, err := src.Read(buffer)
	if err != nil && err != io.EOF {
		return "", err
	}
	if _, err := src.Seek(0, io.SeekStart); err != nil {
		return "", err
	}
	return http.DetectContentType(buffer[:n]), nil
}

func containsFold(values []string, target string) bool {
	for _, v := range values {
		if strings.EqualFold(strings.TrimSpace(v), target) {
			return true
		}
	}
	return false
}

func isAllowedExtension(ext string, allowed []string) bool {
	for _, allowedExt := range allowed {
		normalized := strings.ToLower(strings.TrimSpace(allowedExt))
		if normalized == "" {
			continue
		}
		if !strings.HasPrefix(normalized, ".") {
			normalized = "." + normalized
		}
		if ext == normalized {
			return true
		}
	}
	return false
}

func decodeImageDimensions(src io.ReadSeeker, contentType string) (int, int, error) {
	if strings.EqualFold(contentType, "image/webp") {
		width, height, err := decodeWebPDimensions(src)
		if err != nil {
			return 0, 0, fmt.Errorf("decode webp: %w", err)
		}
		return width, height, nil
	}
	if _, err := src.Seek(0, io.SeekStart); err != nil {
		return 0, 0, err
	}
	cfg, _, err := image.DecodeConfig(src)
	if err != nil {
		return 0, 0, fmt.Errorf("decode image: %w", err)
	}
	return cfg.Width, cfg.Height, nil
}

// decodeWebPDimensions 只读取 RIFF 头部的 VP8X/VP8/VP8L 块
func decodeWebPDimensions(src io.ReadSeeker) (int, int, error) {
	if _, err := src.Seek(0, io.SeekStart); err != nil {
		return 0, 0, err
	}
	header := make([]byte, 12)
	if _, err := io.ReadFull(src, header); err != nil {
		return 0, 0, err
	}
	if string(header[0:4]) != "RIFF" || string(header[8:12]) != "WEBP" {
		return 0, 0, fmt.Errorf("invalid webp header")
	}
	chunkHeader := make([]byte, 8)
	for {
		if _, err := io.ReadFull(src, chunkHeader); err != nil {
			return 0, 0, err
		}
		chunkType := string(chunkHeader[0:4])
		chunkSize := int64(binary.LittleEndian.Uint32(chunkHeader[4:8]))
		switch chunkType {
		case "VP8X", "VP8 ", "VP8L":
			if chunkSize > 64 {
				chunkSize = 64
			}
			data := make([]byte, chunkSize)
			if _, err := io.ReadFull(src, data); err != nil {
				return 0, 0, err
			}
			return webPChunkDimensions(chunkType, data)
		}
		skip := chunkSize + chunkSize%2
		if _, err := src.Seek(skip, io.SeekCurrent); err != nil {
			return 0, 0, err
		}
	}
}

func webPChunkDimensions(chunkType string, data []byte) (int, int, error) {
	switch chunkType {
	case "VP8X":
		if len(data) < 10 {
			return 0, 0, fmt.Errorf("short VP8X chunk")
		}
		width := 1 + int(data[4]) + int(data[5])<<8 + int(data[6])<<16
		height := 1 + int(data[7]) + int(data[8])<<8 + int(data[9])<<16
		return width, height, nil
	case "VP8 ":
		if len(data) < 10 {
			return 0, 0, fmt.Errorf("short VP8 chunk")
		}
		width := int(binary.LittleEndian.Uint16(data[6:8]) & 0x3FFF)
		height := int(binary.LittleEndian.Uint16(data[8:10]) & 0x3FFF)
		return width, height, nil
	default:
		if len(data) < 5 || data[0] != 0x2f {
			return 0, 0, fmt.Errorf("invalid VP8L chunk")
		}
		bits := binary.LittleEndian.Uint32(data[1:5])
		width := int(bits&0x3FFF) + 1
		height := int((bits>>14)&0x3FFF) + 1
		return width, height, nil
	}
}
