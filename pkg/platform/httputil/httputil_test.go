package httputil

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "warranty/pkg/domain-errors"
)

func decodeBody(t *testing.T, rr *httptest.ResponseRecorder) map[string]string {
	t.Helper()
	var body map[string]string
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	return body
}

func TestWriteError(t *testing.T) {
	tests := []struct {
		name            string
		err             error
		wantStatus      int
		wantCode        string
		wantDescription string
	}{
		{
			name:       "internal error omits description",
			err:        dErrors.New(dErrors.CodeInternal, "db failed"),
			wantStatus: http.StatusInternalServerError,
			wantCode:   "internal_error",
		},
		{
			name:       "untyped error is internal",
			err:        assert.AnError,
			wantStatus: http.StatusInternalServerError,
			wantCode:   "internal_error",
		},
		{
			name:            "validation keeps description",
			err:             dErrors.New(dErrors.CodeValidation, "serialNumber is required"),
			wantStatus:      http.StatusBadRequest,
			wantCode:        string(dErrors.CodeValidation),
			wantDescription: "serialNumber is required",
		},
		{
			name:            "ledger unavailable keeps description",
			err:             dErrors.New(dErrors.CodeLedgerUnavailable, "ledger timed out"),
			wantStatus:      http.StatusServiceUnavailable,
			wantCode:        string(dErrors.CodeLedgerUnavailable),
			wantDescription: "ledger timed out",
		},
		{
			name:            "ledger rejection keeps description",
			err:             dErrors.New(dErrors.CodeLedgerRejected, "execution reverted"),
			wantStatus:      http.StatusBadGateway,
			wantCode:        string(dErrors.CodeLedgerRejected),
			wantDescription: "execution reverted",
		},
		{
			name:            "persistence failure keeps description",
			err:             dErrors.New(dErrors.CodePersistence, "record not saved"),
			wantStatus:      http.StatusInternalServerError,
			wantCode:        string(dErrors.CodePersistence),
			wantDescription: "record not saved",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := httptest.NewRecorder()
			WriteError(rr, tt.err)

			assert.Equal(t, tt.wantStatus, rr.Code)
			assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))
			body := decodeBody(t, rr)
			assert.Equal(t, tt.wantCode, body["error"])
			desc, ok := body["error_description"]
			if tt.wantDescription == "" {
				assert.False(t, ok, "description must be omitted")
			} else {
				assert.Equal(t, tt.wantDescription, desc)
			}
		})
	}
}

func TestWriteErrorWithFields(t *testing.T) {
	rr := httptest.NewRecorder()
	WriteErrorWithFields(rr, dErrors.New(dErrors.CodePersistence, "record not saved"),
		map[string]string{"transactionHash": "0xfeed"})

	body := decodeBody(t, rr)
	assert.Equal(t, string(dErrors.CodePersistence), body["error"])
	assert.Equal(t, "0xfeed", body["transactionHash"])
}

type probeRequest struct {
	Serial string `json:"serial"`
}

func (p *probeRequest) Normalize() {
	p.Serial = strings.TrimSpace(p.Serial)
}

func (p *probeRequest) Validate() error {
	if p.Serial == "" {
		return dErrors.New(dErrors.CodeValidation, "serial is required")
	}
	return nil
}

func TestDecodeAndPrepare(t *testing.T) {
	decode := func(body string) (*probeRequest, *httptest.ResponseRecorder) {
		rr := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
		got, ok := DecodeAndPrepare[probeRequest](rr, req, nil, req.Context(), "req-1")
		if !ok {
			return nil, rr
		}
		return got, rr
	}

	t.Run("normalizes before validating", func(t *testing.T) {
		got, _ := decode(`{"serial":"  SN-1  "}`)
		require.NotNil(t, got)
		assert.Equal(t, "SN-1", got.Serial)
	})

	t.Run("blank after normalization fails validation", func(t *testing.T) {
		got, rr := decode(`{"serial":"   "}`)
		assert.Nil(t, got)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Equal(t, string(dErrors.CodeValidation), decodeBody(t, rr)["error"])
	})

	t.Run("unknown fields are rejected", func(t *testing.T) {
		got, rr := decode(`{"serial":"SN-1","tokenId":1}`)
		assert.Nil(t, got)
		assert.Equal(t, string(dErrors.CodeBadRequest), decodeBody(t, rr)["error"])
	})

	t.Run("oversized body is rejected", func(t *testing.T) {
		got, rr := decode(`{"serial":"` + strings.Repeat("x", maxBodyBytes) + `"}`)
		assert.Nil(t, got)
		body := decodeBody(t, rr)
		assert.Equal(t, string(dErrors.CodeBadRequest), body["error"])
		assert.Equal(t, "request body too large", body["error_description"])
	})
}
