package trustgate

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/redis/go-redis/v9"
)

const trustedDeviceRecordVersion1 = 1

// TrustKV is the durable per-user keyed backing of the trusted-device store.
// The store speaks only this narrow contract so any persistent backing —
// embedded KV, file, remote cache — can substitute for the default Redis
// implementation. Get returns (nil, nil) when the key is absent.
type TrustKV interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

type redisTrustKV struct {
	redis redis.UniversalClient
}

// NewRedisTrustKV wraps a Redis client as the default [TrustKV] backing.
func NewRedisTrustKV(client redis.UniversalClient) TrustKV {
	return &redisTrustKV{redis: client}
}

func (kv *redisTrustKV) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := kv.redis.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: %v", ErrTrustBackendUnavailable, err)
	}
	return data, nil
}

func (kv *redisTrustKV) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := kv.redis.Set(ctx, key, value, ttl).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrTrustBackendUnavailable, err)
	}
	return nil
}

func (kv *redisTrustKV) Delete(ctx context.Context, key string) error {
	if err := kv.redis.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrTrustBackendUnavailable, err)
	}
	return nil
}

// trustedDeviceStore keeps one record list per username, partitioned by key
// so no cross-user visibility is possible. Every read path prunes expired
// records before use; mutations persist immediately, no batching.
type trustedDeviceStore struct {
	kv     TrustKV
	prefix string
	window time.Duration
	now    func() time.Time
}

func newTrustedDeviceStore(kv TrustKV, prefix string, window time.Duration) *trustedDeviceStore {
	if prefix == "" {
		prefix = "tdv"
	}
	return &trustedDeviceStore{
		kv:     kv,
		prefix: prefix,
		window: window,
		now:    time.Now,
	}
}

func (s *trustedDeviceStore) key(username string) string {
	return s.prefix + ":" + username
}

// load decodes, prunes, and (when pruning removed anything) writes back the
// record list for username.
func (s *trustedDeviceStore) load(ctx context.Context, username string) ([]TrustedDeviceRecord, error) {
	data, err := s.kv.Get(ctx, s.key(username))
	if err != nil {
		return nil, err
	}
	if data == nil {
		return nil, nil
	}

	records, err := decodeTrustedDeviceRecords(data)
	if err != nil {
		return nil, err
	}

	now := s.now()
	pruned := records[:0]
	for _, record := range records {
		if record.ExpiresAt.After(now) {
			pruned = append(pruned, record)
		}
	}
	if len(pruned) != len(records) {
		if err := s.persist(ctx, username, pruned); err != nil {
			return nil, err
		}
	}
	return pruned, nil
}

func (s *trustedDeviceStore) persist(ctx context.Context, username string, records []TrustedDeviceRecord) error {
	if len(records) == 0 {
		return s.kv.Delete(ctx, s.key(username))
	}
	encoded, err := encodeTrustedDeviceRecords(records)
	if err != nil {
		return err
	}
	return s.kv.Set(ctx, s.key(username), encoded, s.window)
}

// IsTrusted prunes first, then checks membership.
func (s *trustedDeviceStore) IsTrusted(ctx context.Context, username, fingerprint string) (bool, error) {
	records, err := s.load(ctx, username)
	if err != nil {
		return false, err
	}
	for _, record := range records {
		if record.Fingerprint == fingerprint {
			return true, nil
		}
	}
	return false, nil
}

// RegisterTrust upserts a record for (username, fingerprint), replacing any
// prior record with the same fingerprint so exactly one record exists per
// pair.
func (s *trustedDeviceStore) RegisterTrust(
	ctx context.Context,
	username string,
	fingerprint string,
	deviceLabel string,
	locationLabel string,
) error {
	records, err := s.load(ctx, username)
	if err != nil {
		return err
	}

	kept := records[:0]
	for _, record := range records {
		if record.Fingerprint != fingerprint {
			kept = append(kept, record)
		}
	}

	now := s.now()
	kept = append(kept, TrustedDeviceRecord{
		Fingerprint:   fingerprint,
		DeviceLabel:   deviceLabel,
		LocationLabel: locationLabel,
		TrustedAt:     now,
		ExpiresAt:     now.Add(s.window),
	})
	return s.persist(ctx, username, kept)
}

// List returns the pruned records for username, newest trust grant first.
func (s *trustedDeviceStore) List(ctx context.Context, username string) ([]TrustedDeviceRecord, error) {
	records, err := s.load(ctx, username)
	if err != nil {
		return nil, err
	}
	sort.Slice(records, func(i, j int) bool {
		return records[i].TrustedAt.After(records[j].TrustedAt)
	})
	return records, nil
}

// Revoke removes the record for (username, fingerprint). Revoking an absent
// fingerprint is a no-op.
func (s *trustedDeviceStore) Revoke(ctx context.Context, username, fingerprint string) error {
	records, err := s.load(ctx, username)
	if err != nil {
		return err
	}

	kept := records[:0]
	for _, record := range records {
		if record.Fingerprint != fingerprint {
			kept = append(kept, record)
		}
	}
	return s.persist(ctx, username, kept)
}

func encodeTrustedDeviceRecords(records []TrustedDeviceRecord) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte(trustedDeviceRecordVersion1)

	if len(records) > 65535 {
		return nil, errors.New("trusted device record count exceeded")
	}
	if err := binary.Write(&buf, binary.BigEndian, uint16(len(records))); err != nil {
		return nil, err
	}

	for _, record := range records {
		if err := binary.Write(&buf, binary.BigEndian, record.TrustedAt.Unix()); err != nil {
			return nil, err
		}
		if err := binary.Write(&buf, binary.BigEndian, record.ExpiresAt.Unix()); err != nil {
			return nil, err
		}
		for _, field := range []string{record.Fingerprint, record.DeviceLabel, record.LocationLabel} {
			if len(field) > 65535 {
				return nil, errors.New("trusted device field length exceeded")
			}
			if err := binary.Write(&buf, binary.BigEndian, uint16(len(field))); err != nil {
				return nil, err
			}
			buf.WriteString(field)
		}
	}

	return buf.Bytes(), nil
}

func decodeTrustedDeviceRecords(data []byte) ([]TrustedDeviceRecord, error) {
	reader := bytes.NewReader(data)

	version, err := reader.ReadByte()
	if err != nil {
		return nil, err
	}
	if version != trustedDeviceRecordVersion1 {
		return nil, errors.New("invalid trusted device record version")
	}

	var count uint16
	if err := binary.Read(reader, binary.BigEndian, &count); err != nil {
		return nil, err
	}

	records := make([]TrustedDeviceRecord, 0, count)
	for i := 0; i < int(count); i++ {
		var trustedAt, expiresAt int64
		if err := binary.Read(reader, binary.BigEndian, &trustedAt); err != nil {
			return nil, err
		}
		if err := binary.Read(reader, binary.BigEndian, &expiresAt); err != nil {
			return nil, err
		}

		fields := make([]string, 3)
		for j := range fields {
			var length uint16
			if err := binary.Read(reader, binary.BigEndian, &length); err != nil {
				return nil, err
			}
			raw := make([]byte, length)
			if _, err := io.ReadFull(reader, raw); err != nil {
				return nil, err
			}
			fields[j] = string(raw)
		}

		records = append(records, TrustedDeviceRecord{
			Fingerprint:   fields[0],
			DeviceLabel:   fields[1],
			LocationLabel: fields[2],
			TrustedAt:     time.Unix(trustedAt, 0),
			ExpiresAt:     time.Unix(expiresAt, 0),
		})
	}

	return records, nil
}
