package upload

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"vidyeet/internal/mux"
)

func capacityAPIError(status int, typ, msg string) error {
	return &mux.APIError{
		Method:     http.MethodPost,
		Endpoint:   "/video/v1/uploads",
		StatusCode: status,
		Type:       typ,
		Messages:   []string{msg},
	}
}

func TestIsCapacityError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{name: "tooManyRequests", err: capacityAPIError(http.StatusTooManyRequests, "", ""), want: true},
		{name: "freePlanLimit", err: capacityAPIError(http.StatusBadRequest, "invalid_parameters", "Free plan is limited to 10 assets"), want: true},
		{name: "unprocessableLimit", err: capacityAPIError(http.StatusUnprocessableEntity, "invalid_parameters", "Account is Limited To 100 Assets"), want: true},
		{name: "otherInvalidParameter", err: capacityAPIError(http.StatusBadRequest, "invalid_parameters", "playback_policy is invalid"), want: false},
		{name: "limitWithoutAssets", err: capacityAPIError(http.StatusBadRequest, "invalid_parameters", "title is limited to 512 characters"), want: false},
		{name: "wrongType", err: capacityAPIError(http.StatusBadRequest, "not_found", "limited to 10 assets"), want: false},
		{name: "serverError", err: capacityAPIError(http.StatusInternalServerError, "", ""), want: false},
		{name: "notAPIError", err: errors.New("limited to 10 assets"), want: false},
		{name: "wrapped", err: errorsJoinWrap(capacityAPIError(http.StatusTooManyRequests, "", "")), want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsCapacityError(tt.err); got != tt.want {
				t.Errorf("IsCapacityError() = %v, want %v", got, tt.want)
			}
		})
	}
}

func errorsJoinWrap(err error) error {
	return errors.Join(errors.New("failed to create upload session"), err)
}

func TestCreateWithCapacityNoEviction(t *testing.T) {
	api := &fakeAPI{}
	factory := NewSessionFactory(api, mux.UploadSettings{}, NewCapacityManager(api))

	session, evicted, err := factory.CreateWithCapacity(context.Background())
	if err != nil {
		t.Fatalf("CreateWithCapacity() error: %v", err)
	}
	if session.ID != "up_1" || evicted != 0 {
		t.Errorf("got (%s, %d), want (up_1, 0)", session.ID, evicted)
	}
	if len(api.deleted) != 0 {
		t.Errorf("deleted = %v, want none", api.deleted)
	}
}

func TestCreateWithCapacityEvictsOldest(t *testing.T) {
	api := &fakeAPI{
		createErrs: []error{capacityAPIError(http.StatusTooManyRequests, "", "")},
		assets: []mux.Asset{
			{ID: "newest", CreatedAt: "300"},
			{ID: "oldest", CreatedAt: "100"},
			{ID: "middle", CreatedAt: "200"},
		},
	}
	factory := NewSessionFactory(api, mux.UploadSettings{}, NewCapacityManager(api))

	session, evicted, err := factory.CreateWithCapacity(context.Background())
	if err != nil {
		t.Fatalf("CreateWithCapacity() error: %v", err)
	}
	if session == nil || evicted != 1 {
		t.Errorf("evicted = %d, want 1", evicted)
	}
	if len(api.deleted) != 1 || api.deleted[0] != "oldest" {
		t.Errorf("deleted = %v, want [oldest]", api.deleted)
	}
	if api.createCalls != 2 {
		t.Errorf("createCalls = %d, want 2", api.createCalls)
	}
}

func TestCreateWithCapacitySecondFailureIsFatal(t *testing.T) {
	limit := capacityAPIError(http.StatusBadRequest, "invalid_parameters", "Free plan is limited to 10 assets")
	api := &fakeAPI{
		createErrs: []error{limit, limit, limit},
		assets:     []mux.Asset{{ID: "a1", CreatedAt: "100"}, {ID: "a2", CreatedAt: "200"}},
	}
	factory := NewSessionFactory(api, mux.UploadSettings{}, NewCapacityManager(api))

	_, _, err := factory.CreateWithCapacity(context.Background())

	var capErr *CapacityError
	if !errors.As(err, &capErr) {
		t.Fatalf("expected *CapacityError, got %v", err)
	}
	if capErr.EvictedAssetID != "a1" {
		t.Errorf("EvictedAssetID = %q, want a1", capErr.EvictedAssetID)
	}
	if api.createCalls != 2 {
		t.Errorf("createCalls = %d, want 2", api.createCalls)
	}
	if len(api.deleted) != 1 {
		t.Errorf("deleted = %v, want exactly one eviction", api.deleted)
	}
}

func TestCreateWithCapacityPropagatesOtherErrors(t *testing.T) {
	unauthorized := &mux.APIError{StatusCode: http.StatusUnauthorized, Type: "unauthorized"}
	api := &fakeAPI{createErrs: []error{unauthorized}}
	factory := NewSessionFactory(api, mux.UploadSettings{}, NewCapacityManager(api))

	_, _, err := factory.CreateWithCapacity(context.Background())

	var apiErr *mux.APIError
	if !errors.As(err, &apiErr) || apiErr.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected wrapped 401 APIError, got %v", err)
	}
	if api.createCalls != 1 {
		t.Errorf("createCalls = %d, want 1", api.createCalls)
	}
	if SeverityOf(err) != SeverityConfig {
		t.Errorf("SeverityOf() = %v, want config", SeverityOf(err))
	}
}

func TestCreateWithCapacityDeletionFailureAborts(t *testing.T) {
	api := &fakeAPI{
		createErrs: []error{capacityAPIError(http.StatusTooManyRequests, "", "")},
		assets:     []mux.Asset{{ID: "a1", CreatedAt: "100"}},
		deleteErr:  errors.New("delete failed"),
	}
	factory := NewSessionFactory(api, mux.UploadSettings{}, NewCapacityManager(api))

	if _, _, err := factory.CreateWithCapacity(context.Background()); err == nil {
		t.Fatal("expected error when eviction fails")
	}
	if api.createCalls != 1 {
		t.Errorf("createCalls = %d, want 1", api.createCalls)
	}
}

func TestEvictOldestWithoutAssets(t *testing.T) {
	manager := NewCapacityManager(&fakeAPI{})

	_, err := manager.EvictOldest(context.Background())

	var capErr *CapacityError
	if !errors.As(err, &capErr) {
		t.Fatalf("expected *CapacityError, got %v", err)
	}
}

func TestOldestAssetRejectsBadTimestamp(t *testing.T) {
	_, err := OldestAsset([]mux.Asset{{ID: "a1", CreatedAt: "100"}, {ID: "a2", CreatedAt: "soon"}})
	if err == nil {
		t.Fatal("expected error for unparseable created_at")
	}
}
