package community_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"dfbasim/internal/community"
	"dfbasim/internal/dfba"
	"dfbasim/internal/fba"
	"dfbasim/internal/kinetics"
	"dfbasim/internal/organism"
)

// Shared vessel layout: [biomass_yeast, biomass_acetobacter, glucose, oxygen, ethanol].
const (
	idxYeast       = 0
	idxAcetobacter = 1
	idxGlucose     = 2
	idxOxygen      = 3
	idxEthanol     = 4
)

var labels = []string{"biomass_yeast", "biomass_acetobacter", "glucose", "oxygen", "ethanol"}

func yeastMember() *organism.Organism {
	return &organism.Organism{
		Name:         "yeast",
		Model:        fba.CoreYeast(),
		Solver:       fba.NewYieldSolver(),
		BiomassIndex: idxYeast,
		Uptakes: []organism.Uptake{
			{Exchange: fba.ExGlucose, StateIndex: idxGlucose, Kinetics: kinetics.Params{Vmax: 10, Km: 0.5}},
			{Exchange: fba.ExOxygen, StateIndex: idxOxygen, Kinetics: kinetics.Params{Vmax: 8, Km: 0.2}},
			{Exchange: fba.ExEthanol, StateIndex: idxEthanol, Kinetics: kinetics.Params{Vmax: 2, Km: 0.5}},
		},
		Exchanges: []organism.Exchange{
			{Reaction: fba.ExGlucose, StateIndex: idxGlucose, MolarMass: 0.18016},
			{Reaction: fba.ExOxygen, StateIndex: idxOxygen, MolarMass: 0.032},
			{Reaction: fba.ExEthanol, StateIndex: idxEthanol, MolarMass: 0.04607},
		},
	}
}

func acetobacterMember() *organism.Organism {
	return &organism.Organism{
		Name:         "acetobacter",
		Model:        fba.CoreAcetobacter(),
		Solver:       fba.NewYieldSolver(),
		BiomassIndex: idxAcetobacter,
		Uptakes: []organism.Uptake{
			{Exchange: fba.ExEthanol, StateIndex: idxEthanol, Kinetics: kinetics.Params{Vmax: 6, Km: 0.5}},
			{Exchange: fba.ExOxygen, StateIndex: idxOxygen, Kinetics: kinetics.Params{Vmax: 10, Km: 0.2}},
		},
		Exchanges: []organism.Exchange{
			{Reaction: fba.ExOxygen, StateIndex: idxOxygen, MolarMass: 0.032},
			{Reaction: fba.ExEthanol, StateIndex: idxEthanol, MolarMass: 0.04607},
		},
	}
}

func aeration(kla, csat float64) *community.OxygenTransfer {
	return &community.OxygenTransfer{
		StateIndex: idxOxygen,
		Transfer:   kinetics.MassTransfer{KLa: kla, CSat: csat},
	}
}

var _ = Describe("Community", func() {
	var state dfba.State

	BeforeEach(func() {
		state = dfba.State{0.02, 0.015, 5.0, 6.0, 1.2}
	})

	It("aggregates member order commutatively", func() {
		forward := community.New(labels, aeration(7.5, 10), yeastMember(), acetobacterMember())
		reversed := community.New(labels, aeration(7.5, 10), acetobacterMember(), yeastMember())

		dxF, err := forward.Derive(state, 2.0)
		Expect(err).NotTo(HaveOccurred())
		dxR, err := reversed.Derive(state, 2.0)
		Expect(err).NotTo(HaveOccurred())

		for i := range dxF {
			Expect(dxF[i]).To(BeNumerically("~", dxR[i], 1e-12))
		}
	})

	It("applies oxygen mass transfer exactly once", func() {
		vessel := community.New(labels, aeration(7.5, 10), yeastMember(), acetobacterMember())
		sterile := community.New(labels, aeration(7.5, 10))

		dxVessel, err := vessel.Derive(state, 0)
		Expect(err).NotTo(HaveOccurred())
		dxSterile, err := sterile.Derive(state, 0)
		Expect(err).NotTo(HaveOccurred())

		// The sterile vessel sees only the transfer term.
		Expect(dxSterile[idxOxygen]).To(BeNumerically("~", 7.5*(10-6.0), 1e-12))

		// Member contributions stack on top of the single transfer term.
		dxY := make(dfba.State, len(state))
		Expect(yeastMember().Contribute(state, 0, dxY)).To(Succeed())
		dxA := make(dfba.State, len(state))
		Expect(acetobacterMember().Contribute(state, 0, dxA)).To(Succeed())
		want := dxSterile[idxOxygen] + dxY[idxOxygen] + dxA[idxOxygen]
		Expect(dxVessel[idxOxygen]).To(BeNumerically("~", want, 1e-12))
	})

	It("contributes no transfer at saturation", func() {
		sterile := community.New(labels, aeration(7.5, 10))
		saturated := dfba.State{0, 0, 5.0, 10.0, 0}

		dx, err := sterile.Derive(saturated, 0)
		Expect(err).NotTo(HaveOccurred())
		Expect(dx[idxOxygen]).To(BeZero())
	})

	It("sums shared-metabolite contributions instead of overwriting", func() {
		vessel := community.New(labels, nil, yeastMember(), acetobacterMember())

		dx, err := vessel.Derive(state, 0)
		Expect(err).NotTo(HaveOccurred())

		dxY := make(dfba.State, len(state))
		Expect(yeastMember().Contribute(state, 0, dxY)).To(Succeed())
		dxA := make(dfba.State, len(state))
		Expect(acetobacterMember().Contribute(state, 0, dxA)).To(Succeed())

		for i := range dx {
			Expect(dx[i]).To(BeNumerically("~", dxY[i]+dxA[i], 1e-12))
		}
	})

	It("rejects a mismatched state vector", func() {
		vessel := community.New(labels, nil, yeastMember())
		_, err := vessel.Derive(dfba.State{0.01, 5.0}, 0)
		Expect(err).To(MatchError(dfba.ErrDimensionMismatch))
	})

	It("reports its layout", func() {
		vessel := community.New(labels, nil, yeastMember(), acetobacterMember())
		Expect(vessel.StateDim()).To(Equal(5))
		Expect(vessel.Labels()).To(Equal(labels))

		// Labels returns a copy, not the internal slice.
		got := vessel.Labels()
		got[0] = "mutated"
		Expect(vessel.Labels()[0]).To(Equal("biomass_yeast"))
	})
})
