package dto

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStoreRecord_Decode(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantID  RecordID
		wantAt  time.Time
		wantErr bool
	}{
		{
			name:   "numeric id and local time",
			body:   `{"id": 42, "coinId": "bitcoin", "createdAt": "2024-05-01T10:20:30.123456"}`,
			wantID: "42",
			wantAt: time.Date(2024, 5, 1, 10, 20, 30, 123456000, time.UTC),
		},
		{
			name:   "string id and rfc3339",
			body:   `{"id": "abc", "coinId": "bitcoin", "createdAt": "2024-05-01T10:20:30+02:00"}`,
			wantID: "abc",
			wantAt: time.Date(2024, 5, 1, 8, 20, 30, 0, time.UTC),
		},
		{
			name:   "null created at",
			body:   `{"id": 1, "coinId": "bitcoin", "createdAt": null}`,
			wantID: "1",
		},
		{
			name:    "garbage time",
			body:    `{"id": 1, "coinId": "bitcoin", "createdAt": "yesterday"}`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var rec StoreRecord
			err := json.Unmarshal([]byte(tt.body), &rec)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantID, rec.ID)
			assert.Equal(t, "bitcoin", rec.CoinID)
			assert.True(t, tt.wantAt.Equal(rec.CreatedAt.Time), "got %v", rec.CreatedAt.Time)
		})
	}
}

func TestRecordID_Marshal(t *testing.T) {
	out, err := json.Marshal(struct {
		A RecordID `json:"a"`
		B RecordID `json:"b"`
		C RecordID `json:"c"`
	}{A: "12", B: "x-1", C: "007"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"a": 12, "b": "x-1", "c": "007"}`, string(out))
}

func TestAPIResponse_Envelope(t *testing.T) {
	out, err := json.Marshal(Success([]StoreRecord{}))
	require.NoError(t, err)
	assert.JSONEq(t, `{"success": true, "message": "Success", "data": []}`, string(out))

	out, err = json.Marshal(Failure("Coin already in favorites"))
	require.NoError(t, err)
	assert.JSONEq(t, `{"success": false, "message": "Coin already in favorites", "data": null}`, string(out))
}
