package handlers

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/yeqown/go-qrcode/v2"
	"github.com/yeqown/go-qrcode/writer/standard"

	"impostor/internal/game"
)

// RoomQR serves a PNG QR code for a room's join link.
func (h *Handler) RoomQR(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")

	room, err := h.store.Load(r.Context(), code)
	if errors.Is(err, game.ErrRoomNotFound) {
		respondJSON(w, http.StatusNotFound, errorResponse{Error: "room not found"})
		return
	}
	if err != nil {
		log.Printf("❌ Failed to load room %s for QR: %v", code, err)
		respondJSON(w, http.StatusInternalServerError, errorResponse{Error: "failed to load room"})
		return
	}

	base := h.publicURL
	if base == "" {
		base = "http://" + r.Host
	}
	png, err := generateQRCode(fmt.Sprintf("%s/room/%s", base, room.Code))
	if err != nil {
		log.Printf("❌ Failed to generate QR for room %s: %v", code, err)
		respondJSON(w, http.StatusInternalServerError, errorResponse{Error: "failed to generate QR code"})
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Write(png)
}

// generateQRCode generates a QR code for the given URL and returns the PNG bytes
func generateQRCode(url string) ([]byte, error) {
	// Create QR code with medium error correction level
	qrc, err := qrcode.NewWith(url,
		qrcode.WithErrorCorrectionLevel(qrcode.ErrorCorrectionMedium),
		qrcode.WithEncodingMode(qrcode.EncModeByte),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create QR code: %w", err)
	}

	// The writer only targets files, so go through a temporary one
	tmpFile := fmt.Sprintf("%s/qr_%d.png", os.TempDir(), time.Now().UnixNano())

	wr, err := standard.New(tmpFile,
		standard.WithBuiltinImageEncoder(standard.PNG_FORMAT),
		standard.WithQRWidth(8), // 8 pixels per module
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create writer: %w", err)
	}

	if err := qrc.Save(wr); err != nil {
		return nil, fmt.Errorf("failed to save QR code: %w", err)
	}

	data, err := os.ReadFile(tmpFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read QR code file: %w", err)
	}
	os.Remove(tmpFile)

	return data, nil
}
