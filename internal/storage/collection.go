package storage

import "context"

// LoadCollection returns the typed records of a collection, never nil.
func LoadCollection[T any](ctx context.Context, s Store, collection string) ([]T, error) {
	var records []T
	if err := s.Load(ctx, collection, &records); err != nil {
		return nil, err
	}
	if records == nil {
		records = []T{}
	}
	return records, nil
}

func SaveCollection[T any](ctx context.Context, s Store, collection string, records []T) error {
	if records == nil {
		records = []T{}
	}
	return s.Save(ctx, collection, records)
}
