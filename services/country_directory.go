package services

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rpupo63/blog-admin-backend/database"
	"github.com/rpupo63/blog-admin-backend/models"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const countryCacheKey = "blog-admin:countries"

// CountryDirectory lists the countries offered on the blog forms.
type CountryDirectory interface {
	ListCountries(ctx context.Context) ([]models.Country, error)
}

type databaseCountryDirectory struct {
	repo *database.CountryRepo
}

func NewCountryDirectory(repo *database.CountryRepo) CountryDirectory {
	return databaseCountryDirectory{repo: repo}
}

func (d databaseCountryDirectory) ListCountries(ctx context.Context) ([]models.Country, error) {
	return d.repo.FindAll(ctx)
}

// cachedCountryDirectory keeps the country list in redis. Redis failures are
// logged and the request falls through to the next directory.
type cachedCountryDirectory struct {
	logger zerolog.Logger
	next   CountryDirectory
	client *redis.Client
	ttl    time.Duration
}

func NewCachedCountryDirectory(next CountryDirectory, client *redis.Client, ttl time.Duration) CountryDirectory {
	if client == nil {
		return next
	}
	return cachedCountryDirectory{
		logger: log.With().Str("serviceName", "countryDirectory").Logger(),
		next:   next,
		client: client,
		ttl:    ttl,
	}
}

func (d cachedCountryDirectory) ListCountries(ctx context.Context) ([]models.Country, error) {
	cached, err := d.client.Get(ctx, countryCacheKey).Bytes()
	switch {
	case err == nil:
		var countries []models.Country
		if err := json.Unmarshal(cached, &countries); err == nil {
			return countries, nil
		}
		d.logger.Warn().Msg("discarding undecodable country cache entry")
	case err != redis.Nil:
		d.logger.Warn().Err(err).Msg("country cache read failed")
	}

	countries, err := d.next.ListCountries(ctx)
	if err != nil {
		return nil, err
	}

	if payload, err := json.Marshal(countries); err == nil {
		if err := d.client.Set(ctx, countryCacheKey, payload, d.ttl).Err(); err != nil {
			d.logger.Warn().Err(err).Msg("country cache write failed")
		}
	}

	return countries, nil
}
