package cloudinary

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUploader_UploadImage(t *testing.T) {
	tests := []struct {
		name              string
		mockServerHandler func(t *testing.T, w http.ResponseWriter, r *http.Request)

		wantURL         string
		wantError       bool
		wantErrorString string
	}{
		{
			name: "success returns the secure URL",
			mockServerHandler: func(t *testing.T, w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, http.MethodPost, r.Method)
				assert.Equal(t, "/image/upload", r.URL.Path)

				require.NoError(t, r.ParseMultipartForm(1<<20))
				assert.Equal(t, "unsigned-preset", r.FormValue("upload_preset"))

				file, header, err := r.FormFile("file")
				require.NoError(t, err)
				defer func() {
					_ = file.Close()
				}()
				assert.Equal(t, "image.jpg", header.Filename)
				contents, err := io.ReadAll(file)
				require.NoError(t, err)
				assert.Equal(t, []byte{0xff, 0xd8, 0xff}, contents)

				w.Header().Set("Content-Type", "application/json")
				_, _ = w.Write([]byte(`{"public_id":"abc","secure_url":"https://res.cloudinary.com/demo/image/upload/abc.jpg"}`))
			},
			wantURL: "https://res.cloudinary.com/demo/image/upload/abc.jpg",
		},
		{
			name: "non-2xx response is an error",
			mockServerHandler: func(t *testing.T, w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusBadRequest)
				_, _ = w.Write([]byte(`{"error":{"message":"Upload preset not found"}}`))
			},
			wantError:       true,
			wantErrorString: "response error 400",
		},
		{
			name: "missing secure_url is an error",
			mockServerHandler: func(t *testing.T, w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				_, _ = w.Write([]byte(`{"public_id":"abc"}`))
			},
			wantError:       true,
			wantErrorString: "missing secure_url",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				tc.mockServerHandler(t, w, r)
			}))
			defer server.Close()

			uploader := NewUploaderWithBaseURL(server.URL, "unsigned-preset", 5*time.Second)
			defer func() {
				_ = uploader.Close()
			}()

			got, err := uploader.UploadImage(context.Background(), []byte{0xff, 0xd8, 0xff})
			if tc.wantError {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tc.wantErrorString)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.wantURL, got)
		})
	}
}
