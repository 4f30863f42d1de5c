package web

import (
	"net/http"
	"studio/handlers"
	"studio/models"
	"time"

	"github.com/gin-gonic/gin"
)

type ProofRequest struct {
	PhotoID            uint64 `json:"photo_id" binding:"required"`
	IsFavorite         bool   `json:"is_favorite"`
	IsMarkedForEditing bool   `json:"is_marked_for_editing"`
	EditingNotes       string `json:"editing_notes"`
}

type ProofView struct {
	PhotoID            uint64    `json:"photo_id"`
	IsFavorite         bool      `json:"is_favorite"`
	IsMarkedForEditing bool      `json:"is_marked_for_editing"`
	EditingNotes       string    `json:"editing_notes"`
	SelectedDate       time.Time `json:"selected_date"`
}

func proofView(p *models.Proof) ProofView {
	return ProofView{
		PhotoID:            p.PhotoID,
		IsFavorite:         p.IsFavorite,
		IsMarkedForEditing: p.IsMarkedForEditing,
		EditingNotes:       p.EditingNotes,
		SelectedDate:       p.SelectedDate,
	}
}

// ProofList returns the marks made in the caller's current session
func ProofList(c *gin.Context) {
	id, ok := galleryID(c)
	if !ok {
		return
	}
	v := visit(c, id)
	if v == nil {
		return
	}
	proofs, err := handlers.Galleries.SessionProofs(c.Request.Context(), v.Session.ID)
	if err != nil {
		fail(c, err)
		return
	}
	result := make([]ProofView, 0, len(proofs))
	for i := range proofs {
		result = append(result, proofView(&proofs[i]))
	}
	c.JSON(http.StatusOK, result)
}

func ProofRecord(c *gin.Context) {
	id, ok := galleryID(c)
	if !ok {
		return
	}
	r := ProofRequest{}
	if err := c.ShouldBindJSON(&r); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}
	v := visit(c, id)
	if v == nil {
		return
	}
	proof, err := handlers.Galleries.RecordProof(c.Request.Context(), v.Session.ID, r.PhotoID, r.IsFavorite, r.IsMarkedForEditing, r.EditingNotes)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, proofView(proof))
}

func ProofClear(c *gin.Context) {
	id, ok := galleryID(c)
	if !ok {
		return
	}
	photo, ok := photoID(c)
	if !ok {
		return
	}
	v := visit(c, id)
	if v == nil {
		return
	}
	if err := handlers.Galleries.ClearProof(c.Request.Context(), v.Session.ID, photo); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, handlers.OKResponse)
}
