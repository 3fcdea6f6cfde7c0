package handler

import (
	"net/http"

	"github.com/ginclub-dev/ginclub/shared/utils"
)

type allowlistResponse struct {
	Allowlist []string `json:"allowlist"`
}

func (h *Handler) GetAllowlist(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, allowlistResponse{Allowlist: h.allowlist.Get()})
}

type replaceAllowlistRequest struct {
	Allowlist []string `validate:"required" json:"allowlist"`
}

func (h *Handler) ReplaceAllowlist(w http.ResponseWriter, r *http.Request) {
	var body replaceAllowlistRequest
	if err := utils.DecodeValidate(r.Body, &body); err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	h.allowlist.Replace(body.Allowlist)
	writeJSON(w, allowlistResponse{Allowlist: h.allowlist.Get()})
}

type allowlistEntryRequest struct {
	Email string `validate:"required,email" json:"email"`
}

func (h *Handler) AddAllowlistEntry(w http.ResponseWriter, r *http.Request) {
	var body allowlistEntryRequest
	if err := utils.DecodeValidate(r.Body, &body); err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	h.allowlist.Add(body.Email)
	writeJSON(w, allowlistResponse{Allowlist: h.allowlist.Get()})
}

func (h *Handler) RemoveAllowlistEntry(w http.ResponseWriter, r *http.Request) {
	var body allowlistEntryRequest
	if err := utils.DecodeValidate(r.Body, &body); err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	h.allowlist.Remove(body.Email)
	writeJSON(w, allowlistResponse{Allowlist: h.allowlist.Get()})
}

func (h *Handler) ResetAllowlist(w http.ResponseWriter, r *http.Request) {
	h.allowlist.Reset()
	writeJSON(w, allowlistResponse{Allowlist: h.allowlist.Get()})
}
