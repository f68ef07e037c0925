//-------------------------------------------------------------------------
//
// pgEdge Retail Data Generator
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package datagen provides data generation utilities.
package datagen

import (
	"encoding/binary"
	"math/rand/v2"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/uuid"
	"gonum.org/v1/gonum/stat/distuv"
)

// Faker is the single random stream of a generation run. Every draw made
// through it (gofakeit values, distribution samples, UUIDs) consumes the
// same seeded source, so a run is reproducible from its seed and the order
// of calls alone.
type Faker struct {
	src   rand.Source
	rng   *rand.Rand
	faker *gofakeit.Faker
}

// NewFakerWithSeed creates a new Faker with a specific seed for reproducibility.
func NewFakerWithSeed(seed uint64) *Faker {
	return NewFakerWithStream(seed, seed)
}

// NewFakerWithStream creates a Faker from a seed and a stream selector.
// Distinct streams under one seed yield unrelated sequences.
func NewFakerWithStream(seed, stream uint64) *Faker {
	src := rand.NewPCG(seed, stream)
	return &Faker{
		src:   src,
		rng:   rand.New(src),
		faker: gofakeit.NewFaker(src, false),
	}
}

// Int generates a random integer between min and max (inclusive).
func (f *Faker) Int(min, max int) int {
	return f.faker.IntRange(min, max)
}

// Float64 returns a uniform float64 in [0, 1).
func (f *Faker) Float64() float64 {
	return f.rng.Float64()
}

// Uniform returns a uniform float64 in [min, max).
func (f *Faker) Uniform(min, max float64) float64 {
	return min + (max-min)*f.rng.Float64()
}

// Chance reports true with probability p.
func (f *Faker) Chance(p float64) bool {
	return f.rng.Float64() < p
}

// Poisson draws a Poisson distributed count with the given mean.
func (f *Faker) Poisson(lambda float64) int {
	if lambda <= 0 {
		return 0
	}
	return int(distuv.Poisson{Lambda: lambda, Src: f.src}.Rand())
}

// Beta draws from a Beta(alpha, beta) distribution.
func (f *Faker) Beta(alpha, beta float64) float64 {
	return distuv.Beta{Alpha: alpha, Beta: beta, Src: f.src}.Rand()
}

// Read fills p with bytes from the stream. It never fails.
func (f *Faker) Read(p []byte) (int, error) {
	var buf [8]byte
	for i := 0; i < len(p); i += 8 {
		binary.LittleEndian.PutUint64(buf[:], f.rng.Uint64())
		copy(p[i:], buf[:])
	}
	return len(p), nil
}

// UUID generates a version 4 UUID from the stream.
func (f *Faker) UUID() string {
	id, err := uuid.NewRandomFromReader(f)
	if err != nil {
		// Read never fails, so this is unreachable.
		panic(err)
	}
	return id.String()
}

// Company generates a random company name.
func (f *Faker) Company() string {
	return f.faker.Company()
}

// Choose returns a random element from the given slice.
func Choose[T any](f *Faker, items []T) T {
	if len(items) == 0 {
		var zero T
		return zero
	}
	return items[f.Int(0, len(items)-1)]
}

// ChooseWeighted returns a random element based on weights.
func ChooseWeighted[T any](f *Faker, items []T, weights []int) T {
	if len(items) == 0 || len(weights) == 0 {
		var zero T
		return zero
	}

	totalWeight := 0
	for _, w := range weights {
		totalWeight += w
	}

	r := f.Int(1, totalWeight)
	cumulative := 0
	for i, w := range weights {
		cumulative += w
		if r <= cumulative {
			return items[i]
		}
	}

	return items[len(items)-1]
}

// NullableString returns the string or empty with given probability.
func (f *Faker) NullableString(s string, nullProbability float64) string {
	if f.Chance(nullProbability) {
		return ""
	}
	return s
}
