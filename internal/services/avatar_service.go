package services

import (
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"

	"github.com/disintegration/imaging"
)

// avatarSize is the fixed square resolution every ingested avatar is
// normalized to.
const avatarSize = 250

// AvatarServiceProvider defines the interface for avatar ingestion.
type AvatarServiceProvider interface {
	Ingest(userID, originalName string, file io.Reader) (string, error)
}

// AvatarService normalizes uploaded avatar images and moves them into
// durable storage. The final name embeds the account ID so re-uploads of
// the same filename by the same account overwrite their own avatar while
// different accounts never collide.
type AvatarService struct {
	users      UserServiceProvider
	avatarsDir string
	uploadsDir string
}

// NewAvatarService creates a new AvatarService. Final images live under
// avatarsDir; in-flight uploads are staged in uploadsDir, where the
// maintenance sweeper collects anything a crashed request left behind.
func NewAvatarService(users UserServiceProvider, avatarsDir, uploadsDir string) (*AvatarService, error) {
	for _, dir := range []string{avatarsDir, uploadsDir} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("could not create directory %s: %w", dir, err)
		}
	}
	return &AvatarService{
		users:      users,
		avatarsDir: avatarsDir,
		uploadsDir: uploadsDir,
	}, nil
}

// Ingest stages the uploaded image, resizes it to a fixed square, moves
// it into the avatars directory with an atomic rename and updates the
// account's avatar reference. The rename happens before the record update
// so a referenced file is always fully written.
func (s *AvatarService) Ingest(userID, originalName string, file io.Reader) (string, error) {
	format, err := imaging.FormatFromFilename(originalName)
	if err != nil {
		return "", ErrBadImage
	}

	// Stage the raw upload in the scratch dir first.
	scratch, err := os.CreateTemp(s.uploadsDir, "upload-*")
	if err != nil {
		return "", fmt.Errorf("could not stage upload: %w", err)
	}
	defer os.Remove(scratch.Name())
	defer scratch.Close()

	if _, err := io.Copy(scratch, file); err != nil {
		return "", fmt.Errorf("could not stage upload: %w", err)
	}
	if _, err := scratch.Seek(0, io.SeekStart); err != nil {
		return "", fmt.Errorf("could not rewind staged upload: %w", err)
	}

	img, err := imaging.Decode(scratch)
	if err != nil {
		return "", ErrBadImage
	}
	img = imaging.Fill(img, avatarSize, avatarSize, imaging.Center, imaging.Lanczos)

	// Write to a temp file on the same filesystem so the final rename is atomic.
	tmp, err := os.CreateTemp(s.avatarsDir, ".upload-*")
	if err != nil {
		return "", fmt.Errorf("could not create temp avatar file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := imaging.Encode(tmp, img, format); err != nil {
		tmp.Close()
		return "", fmt.Errorf("could not encode avatar: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("could not flush avatar file: %w", err)
	}

	uniqueName := fmt.Sprintf("%s_%s", userID, filepath.Base(originalName))
	if err := os.Rename(tmp.Name(), filepath.Join(s.avatarsDir, uniqueName)); err != nil {
		return "", fmt.Errorf("could not move avatar into place: %w", err)
	}

	avatarURL := path.Join("avatars", uniqueName)
	if err := s.users.SetAvatarURL(userID, avatarURL); err != nil {
		return "", fmt.Errorf("could not update avatar reference: %w", err)
	}
	return avatarURL, nil
}
