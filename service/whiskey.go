package service

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"sipscore/log"
	"sipscore/whiskey"
)

const (
	minScore = 1
	maxScore = 10
)

// AddWhiskey appends a tasting entry to the caller's collection, creating
// the collection on the first ever add
func (a *API) AddWhiskey(c *gin.Context) {
	var req addWhiskeyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, MsgMissingWhiskey)
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	req.Proof = strings.TrimSpace(req.Proof)
	if msg := validateWhiskeyInput(req); msg != "" {
		writeError(c, http.StatusBadRequest, msg)
		return
	}

	u := CurrentUser(c)
	entry := whiskey.NewEntry(req.Name, req.Proof, req.SmellingNotes, req.TastingNotes, *req.Score, req.Image)
	uw, created, err := whiskey.AddEntry(c.Request.Context(), u.ID, entry)
	if err != nil {
		log.Logger().Printf("adding whiskey %s for user %s failed: %s", req.Name, u.ID.Hex(), err)
		writeError(c, http.StatusInternalServerError, MsgInternalServerError)
		return
	}

	status := http.StatusOK
	message := "Whiskey added to your profile!"
	if created {
		status = http.StatusCreated
		message = "Added the whiskey to your profile!"
	}
	c.JSON(status, gin.H{
		"message":     message,
		"userWhiskey": uw,
	})
}

// ListWhiskeys returns the caller's entries in append order; any ranking or
// truncation is the client's presentation concern
func (a *API) ListWhiskeys(c *gin.Context) {
	u := CurrentUser(c)
	uw, err := whiskey.GetByUserID(c.Request.Context(), u.ID)
	if err != nil {
		if err == whiskey.ErrNoCollection {
			writeError(c, http.StatusNotFound, MsgNoWhiskeys)
			return
		}
		log.Logger().Printf("listing whiskeys for user %s failed: %s", u.ID.Hex(), err)
		writeError(c, http.StatusInternalServerError, MsgInternalServerError)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":  "Whiskeys fetched successfully",
		"whiskeys": uw.Whiskeys,
	})
}

// DeleteWhiskey removes one entry by id and returns the updated collection
func (a *API) DeleteWhiskey(c *gin.Context) {
	entryID, err := primitive.ObjectIDFromHex(c.Param("whiskeyId"))
	if err != nil {
		writeError(c, http.StatusNotFound, MsgWhiskeyNotFound)
		return
	}

	u := CurrentUser(c)
	uw, err := whiskey.DeleteEntry(c.Request.Context(), u.ID, entryID)
	if err != nil {
		if err == whiskey.ErrNoCollection || err == whiskey.ErrEntryNotFound {
			writeError(c, http.StatusNotFound, MsgWhiskeyNotFound)
			return
		}
		log.Logger().Printf("deleting whiskey %s for user %s failed: %s", entryID.Hex(), u.ID.Hex(), err)
		writeError(c, http.StatusInternalServerError, MsgInternalServerError)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":     "Whiskey removed from your collection",
		"userWhiskey": uw,
	})
}

func validateWhiskeyInput(req addWhiskeyRequest) string {
	if req.Name == "" || req.Proof == "" || req.Score == nil {
		return MsgMissingWhiskey
	}
	if *req.Score < minScore || *req.Score > maxScore {
		return MsgScoreOutOfRange
	}
	return ""
}
