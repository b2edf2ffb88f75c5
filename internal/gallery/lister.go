package gallery

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sort"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/redis/go-redis/v9"

	galerrors "github.com/sanaanm/webdesk/pkg/errors"
)

// ObjectStore is the subset of the S3 API the gallery needs. R2 is
// reached through the same client with a custom endpoint.
type ObjectStore interface {
	ListObjectsV2(ctx context.Context, params *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
	HeadObject(ctx context.Context, params *s3.HeadObjectInput, optFns ...func(*s3.Options)) (*s3.HeadObjectOutput, error)
}

const cacheKey = "webdesk:gallery"

// Service lists gallery images from an object-store bucket. A nil
// Redis client disables the listing cache.
type Service struct {
	store      ObjectStore
	rdb        *redis.Client
	bucket     string
	prefix     string
	publicURL  string
	resizerURL string
	cacheTTL   time.Duration
}

// NewService creates a gallery service. publicURL is the public base
// of the bucket; resizerURL, when set, is the image-resizer origin used
// to build thumbnail URLs.
func NewService(store ObjectStore, bucket, prefix, publicURL, resizerURL string, rdb *redis.Client) *Service {
	return &Service{
		store:      store,
		rdb:        rdb,
		bucket:     bucket,
		prefix:     prefix,
		publicURL:  publicURL,
		resizerURL: resizerURL,
		// Matches the CDN cache window the listing used to be served
		// behind (s-maxage=300).
		cacheTTL: 5 * time.Minute,
	}
}

// List returns the gallery listing, newest upload first.
func (s *Service) List(ctx context.Context) (*Listing, error) {
	if s.store == nil {
		return nil, galerrors.ErrGalleryNotEnabled
	}

	if cached := s.cacheGet(ctx); cached != nil {
		return cached, nil
	}

	keys, err := s.listImageKeys(ctx)
	if err != nil {
		return nil, err
	}

	type datedImage struct {
		img  Image
		when int64
	}
	dated := make([]datedImage, 0, len(keys))
	for _, obj := range keys {
		img := s.describe(ctx, obj)
		when := uploadTime(img)
		if when == 0 && !obj.lastModified.IsZero() {
			// Unparseable metadata stamp; fall back to the object's
			// own timestamp so the image still sorts sensibly.
			when = obj.lastModified.UnixNano()
		}
		dated = append(dated, datedImage{img: img, when: when})
	}

	sort.SliceStable(dated, func(i, j int) bool {
		return dated[i].when > dated[j].when
	})
	images := make([]Image, len(dated))
	for i, d := range dated {
		images[i] = d.img
	}

	listing := &Listing{
		Images:     images,
		Categories: distinctCategories(images),
		Order:      orderNewestFirst,
	}
	s.cacheSet(ctx, listing)
	return listing, nil
}

type objectRef struct {
	key          string
	lastModified time.Time
}

func (s *Service) listImageKeys(ctx context.Context) ([]objectRef, error) {
	var refs []objectRef
	var token *string

	for {
		out, err := s.store.ListObjectsV2(ctx, &s3.ListObjectsV2Input{
			Bucket:            aws.String(s.bucket),
			Prefix:            aws.String(s.prefix),
			ContinuationToken: token,
		})
		if err != nil {
			return nil, &galerrors.ListError{Key: s.prefix, Err: err}
		}

		for _, obj := range out.Contents {
			key := aws.ToString(obj.Key)
			if !isImageKey(key) {
				continue
			}
			refs = append(refs, objectRef{
				key:          key,
				lastModified: aws.ToTime(obj.LastModified),
			})
		}

		if !aws.ToBool(out.IsTruncated) || out.NextContinuationToken == nil {
			return refs, nil
		}
		token = out.NextContinuationToken
	}
}

// describe builds an Image from per-object metadata. A failed metadata
// read degrades to default categories rather than dropping the image.
func (s *Service) describe(ctx context.Context, obj objectRef) Image {
	img := Image{
		ID:         obj.key,
		Name:       nameFromKey(obj.key),
		Img:        s.publicURL + "/" + obj.key,
		Categories: []string{defaultCategory},
	}
	img.Thumbnail = s.thumbnailURL(img.Img)
	if !obj.lastModified.IsZero() {
		img.UploadedAt = obj.lastModified.UTC().Format(time.RFC3339)
	}

	head, err := s.store.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(obj.key),
	})
	if err != nil {
		log.Printf("webdeskd: gallery metadata for %s: %v", obj.key, err)
		return img
	}

	img.Categories = parseCategories(head.Metadata["categories"])
	if uploaded := head.Metadata["uploadedat"]; uploaded != "" {
		img.UploadedAt = uploaded
	}
	return img
}

// thumbnailURL routes the full image through the resizer when one is
// configured.
func (s *Service) thumbnailURL(fullURL string) string {
	if s.resizerURL == "" {
		return fullURL
	}
	return fmt.Sprintf("%s/cdn-cgi/image/width=800,fit=scale-down,quality=85,format=auto/%s", s.resizerURL, fullURL)
}

func (s *Service) cacheGet(ctx context.Context) *Listing {
	if s.rdb == nil {
		return nil
	}
	data, err := s.rdb.Get(ctx, cacheKey).Bytes()
	if err != nil {
		return nil
	}
	var listing Listing
	if err := json.Unmarshal(data, &listing); err != nil {
		return nil
	}
	return &listing
}

func (s *Service) cacheSet(ctx context.Context, listing *Listing) {
	if s.rdb == nil {
		return
	}
	data, err := json.Marshal(listing)
	if err != nil {
		return
	}
	if err := s.rdb.Set(ctx, cacheKey, data, s.cacheTTL).Err(); err != nil {
		log.Printf("webdeskd: gallery cache set: %v", err)
	}
}

// uploadTime parses an image's upload stamp for sorting; zero means
// the stamp was missing or unparseable.
func uploadTime(img Image) int64 {
	if img.UploadedAt == "" {
		return 0
	}
	ts, err := time.Parse(time.RFC3339, img.UploadedAt)
	if err != nil {
		return 0
	}
	return ts.UnixNano()
}

func distinctCategories(images []Image) []string {
	seen := make(map[string]bool)
	var categories []string
	for _, img := range images {
		for _, c := range img.Categories {
			if !seen[c] {
				seen[c] = true
				categories = append(categories, c)
			}
		}
	}
	sort.Strings(categories)
	return categories
}
