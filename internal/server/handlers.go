// Package server implements the HTTP boundary: action dispatch, flat
// parameter decoding, and SimpleDB 2009-04-15 wire responses.
package server

import (
	"context"
	"log/slog"
	"maps"
	"net/http"
	"net/url"
	"slices"

	"github.com/camvine/fakesdb/internal/models"
	"github.com/camvine/fakesdb/internal/storage"
)

// Handler dispatches decoded actions to the storage services.
type Handler struct {
	domains *storage.DomainService
	items   *storage.ItemService
	selects *storage.SelectService
}

// NewHandler wires the storage services over one directory.
func NewHandler(dir *storage.Directory, domainCap int) *Handler {
	return &Handler{
		domains: storage.NewDomainService(dir, domainCap),
		items:   storage.NewItemService(dir),
		selects: storage.NewSelectService(dir),
	}
}

// Dispatch decodes the Action parameter and routes to the matching
// operation. Unknown actions get a placeholder response, not a fault.
func (h *Handler) Dispatch(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		// A body we cannot decode is the client's fault, not ours.
		writeError(w, &models.Fault{
			Code:    models.FaultInvalidParameterValue,
			Message: "The request body could not be parsed.",
		})
		return
	}
	ctx := r.Context()
	form := r.Form
	action := form.Get("Action")

	var err error
	switch action {
	case "CreateDomain":
		err = h.createDomain(ctx, w, form)
	case "DeleteDomain":
		err = h.deleteDomain(ctx, w, form)
	case "ListDomains":
		err = h.listDomains(ctx, w)
	case "DeleteAttributes":
		err = h.deleteAttributes(ctx, w, form)
	case "PutAttributes":
		err = h.putAttributes(ctx, w, form)
	case "GetAttributes":
		err = h.getAttributes(ctx, w, form)
	case "BatchPutAttributes":
		err = h.batchPutAttributes(ctx, w, form)
	case "Select":
		err = h.selectItems(ctx, w, form)
	default:
		slog.InfoContext(ctx, "Unknown action", "action", action)
		w.Header().Set("Content-Type", "text/plain")
		_, _ = w.Write([]byte("like, whatever.\n"))
	}
	if err != nil {
		writeError(w, err)
	}
}

func (h *Handler) createDomain(ctx context.Context, w http.ResponseWriter, form url.Values) error {
	name, err := requiredParam(form, "DomainName")
	if err != nil {
		return err
	}
	if err := h.domains.CreateDomain(ctx, name); err != nil {
		return err
	}
	writeActionResponse(w, "CreateDomainResponse")
	return nil
}

func (h *Handler) deleteDomain(ctx context.Context, w http.ResponseWriter, form url.Values) error {
	name, err := requiredParam(form, "DomainName")
	if err != nil {
		return err
	}
	if err := h.domains.DeleteDomain(ctx, name); err != nil {
		return err
	}
	writeActionResponse(w, "DeleteDomainResponse")
	return nil
}

func (h *Handler) listDomains(ctx context.Context, w http.ResponseWriter) error {
	names, err := h.domains.ListDomains(ctx)
	if err != nil {
		return err
	}
	writeXML(w, http.StatusOK, listDomainsResponse{
		Xmlns:    xmlns,
		Result:   listDomainsResult{DomainNames: names},
		Metadata: newMetadata(),
	})
	return nil
}

func (h *Handler) deleteAttributes(ctx context.Context, w http.ResponseWriter, form url.Values) error {
	domain, err := requiredParam(form, "DomainName")
	if err != nil {
		return err
	}
	itemName, err := requiredParam(form, "ItemName")
	if err != nil {
		return err
	}
	if err := h.items.DeleteAttributes(ctx, domain, itemName); err != nil {
		return err
	}
	writeActionResponse(w, "DeleteAttributesResponse")
	return nil
}

func (h *Handler) putAttributes(ctx context.Context, w http.ResponseWriter, form url.Values) error {
	domain, err := requiredParam(form, "DomainName")
	if err != nil {
		return err
	}
	itemName, err := requiredParam(form, "ItemName")
	if err != nil {
		return err
	}
	if err := h.items.PutAttributes(ctx, domain, itemName, decodeAttributes(form, "")); err != nil {
		return err
	}
	writeActionResponse(w, "PutAttributesResponse")
	return nil
}

func (h *Handler) getAttributes(ctx context.Context, w http.ResponseWriter, form url.Values) error {
	domain, err := requiredParam(form, "DomainName")
	if err != nil {
		return err
	}
	itemName, err := requiredParam(form, "ItemName")
	if err != nil {
		return err
	}
	attrs, err := h.items.GetAttributes(ctx, domain, itemName)
	if err != nil {
		return err
	}
	// Maps iterate in random order; sort for a stable wire shape.
	wire := make([]wireAttribute, 0, len(attrs))
	for _, name := range slices.Sorted(maps.Keys(attrs)) {
		wire = append(wire, wireAttribute{Name: name, Value: attrs[name]})
	}
	writeXML(w, http.StatusOK, getAttributesResponse{
		Xmlns:    xmlns,
		Result:   getAttributesResult{Attributes: wire},
		Metadata: newMetadata(),
	})
	return nil
}

func (h *Handler) batchPutAttributes(ctx context.Context, w http.ResponseWriter, form url.Values) error {
	domain, err := requiredParam(form, "DomainName")
	if err != nil {
		return err
	}
	if err := h.items.BatchPutAttributes(ctx, domain, decodeBatchItems(form)); err != nil {
		return err
	}
	writeActionResponse(w, "BatchPutAttributesResponse")
	return nil
}

func (h *Handler) selectItems(ctx context.Context, w http.ResponseWriter, form url.Values) error {
	expr, err := requiredParam(form, "SelectExpression")
	if err != nil {
		return err
	}
	items, err := h.selects.SelectItems(ctx, expr)
	if err != nil {
		return err
	}
	wire := make([]wireItem, 0, len(items))
	for _, item := range items {
		wi := wireItem{Name: item.Name}
		for _, a := range item.Attributes {
			wi.Attributes = append(wi.Attributes, wireAttribute{Name: a.Name, Value: a.Value})
		}
		wire = append(wire, wi)
	}
	writeXML(w, http.StatusOK, selectResponse{
		Xmlns:    xmlns,
		Result:   selectResult{Items: wire},
		Metadata: newMetadata(),
	})
	return nil
}
