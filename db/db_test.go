package db

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_normaliseMySQLDSN(t *testing.T) {
	tests := []struct {
		name     string
		dsn      string
		contains []string
		wantErr  bool
	}{
		{
			name:     "adds parseTime and UTC",
			dsn:      "root:@tcp(127.0.0.1:3306)/studio",
			contains: []string{"parseTime=true", "charset=utf8mb4"},
		},
		{
			name:     "keeps explicit charset",
			dsn:      "root:@tcp(127.0.0.1:3306)/studio?charset=latin1",
			contains: []string{"charset=latin1", "parseTime=true"},
		},
		{
			name:    "invalid",
			dsn:     "root:@tcp(127.0.0.1:3306",
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := normaliseMySQLDSN(tt.dsn)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			for _, c := range tt.contains {
				assert.Contains(t, got, c)
			}
		})
	}
}
