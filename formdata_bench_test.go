package formdata

import (
	"context"
	"strings"
	"testing"
)

func BenchmarkFormData(b *testing.B) {
	part := "--bench\r\n" +
		"Content-Disposition: form-data; name=\"comment\"\r\n" +
		"\r\n" +
		"But what's wrong with you?\r\n"
	closing := "--bench--\r\n"

	small := strings.Repeat(part, 3) + closing
	medium := strings.Repeat(part, 15) + closing
	big := strings.Repeat(part, 100) + closing

	run := func(raw string) func(*testing.B) {
		return func(b *testing.B) {
			ctx := context.Background()
			b.SetBytes(int64(len(raw)))

			for i := 0; i < b.N; i++ {
				form := NewReader(strings.NewReader(raw), "bench")
				for {
					field, err := form.Next(ctx)
					if err != nil {
						break
					}
					_ = field.Ignore(ctx)
				}
			}
		}
	}

	b.Run("small with 3 parts", run(small))
	b.Run("medium with 15 parts", run(medium))
	b.Run("big with 100 parts", run(big))
}
