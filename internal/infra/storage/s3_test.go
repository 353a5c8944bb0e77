package storage

import "testing"

func TestPublicURL(t *testing.T) {
	tests := []struct {
		name string
		opt  Options
		want string
	}{
		{"explicit", Options{PublicURL: "https://cdn.jacare.com/", Bucket: "avatars"}, "https://cdn.jacare.com/avatars/u1.webp"},
		{"endpoint", Options{Endpoint: "http://localhost:9000", Bucket: "avatars"}, "http://localhost:9000/avatars/avatars/u1.webp"},
		{"aws", Options{Region: "sa-east-1", Bucket: "jacare"}, "https://jacare.s3.sa-east-1.amazonaws.com/avatars/u1.webp"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewS3(tt.opt)
			if got := s.URL("/avatars/u1.webp"); got != tt.want {
				t.Errorf("got %s, want %s", got, tt.want)
			}
		})
	}
}
