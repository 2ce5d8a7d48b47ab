package math

import "fmt"

// primes used as Halton/Hammersley bases, one per dimension.
var primes = [...]uint64{2, 3, 5, 7, 11, 13, 17, 19, 23, 29, 31, 37, 41, 43, 47, 53}

// RadicalInverse mirrors the base-b digits of index around the radix point.
func RadicalInverse(index uint64, base uint64) float32 {
	result := float32(0.0)
	denom := float32(1.0)
	for index != 0 {
		denom *= float32(base)
		result += float32(index%base) / denom
		index /= base
	}
	return result
}

// VanderCorput is the base 2 radical inverse: 1 -> 0.5, 2 -> 0.25, 3 -> 0.75.
func VanderCorput(index uint64) float32 {
	return RadicalInverse(index, 2)
}

// Halton fills sample with the index-th point of the Halton sequence, one
// prime base per dimension.
func Halton(index uint64, sample []float32) {
	if len(sample) > len(primes) {
		panic(fmt.Sprintf("halton: %d dimensions requested, at most %d supported", len(sample), len(primes)))
	}
	for i := range sample {
		sample[i] = RadicalInverse(index, primes[i])
	}
}

func Halton2D(index uint64) Vec2 {
	return Vec2{RadicalInverse(index, 2), RadicalInverse(index, 3)}
}

func Halton3D(index uint64) Vec3 {
	return Vec3{RadicalInverse(index, 2), RadicalInverse(index, 3), RadicalInverse(index, 5)}
}

func Halton4D(index uint64) Vec4 {
	return Vec4{RadicalInverse(index, 2), RadicalInverse(index, 3), RadicalInverse(index, 5), RadicalInverse(index, 7)}
}

// Hammersley fills sample with the index-th of nbSamples Hammersley points:
// index/nbSamples followed by Halton dimensions. index must be below nbSamples.
func Hammersley(index uint64, sample []float32, nbSamples uint64) {
	if index >= nbSamples {
		panic(fmt.Sprintf("hammersley: index %d out of range [0,%d)", index, nbSamples))
	}
	if len(sample) == 0 || len(sample)-1 > len(primes) {
		panic(fmt.Sprintf("hammersley: unsupported dimension count %d", len(sample)))
	}
	sample[0] = float32(index) / float32(nbSamples)
	Halton(index, sample[1:])
}

func Hammersley2D(index, nbSamples uint64) Vec2 {
	return Vec2{float32(index) / float32(nbSamples), RadicalInverse(index, 2)}
}

func Hammersley3D(index, nbSamples uint64) Vec3 {
	return Vec3{float32(index) / float32(nbSamples), RadicalInverse(index, 2), RadicalInverse(index, 3)}
}

func Hammersley4D(index, nbSamples uint64) Vec4 {
	return Vec4{float32(index) / float32(nbSamples), RadicalInverse(index, 2), RadicalInverse(index, 3), RadicalInverse(index, 5)}
}

// Roth is the two dimensional Hammersley point set.
func Roth(index, nbSamples uint64) Vec2 {
	return Hammersley2D(index, nbSamples)
}
