// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package storage

import (
	"context"

	"github.com/ava-labs/fundvm/codec"
	"github.com/ava-labs/fundvm/consts"
	"github.com/ava-labs/fundvm/state"
)

const (
	MaxProjectNameSize  = 64
	MaxDescriptionSize  = 512
	MaxAreaSize         = 16
	MaxExcludedAreas    = 32
	MaxContributionTags = 100
)

type ProjectStatus uint8

const (
	PendingApproval ProjectStatus = iota
	Rejected
	Raising
	SuccessfullySettled
	Failed
	Terminated
	Expired
)

func (s ProjectStatus) String() string {
	switch s {
	case PendingApproval:
		return "pending_approval"
	case Rejected:
		return "rejected"
	case Raising:
		return "raising"
	case SuccessfullySettled:
		return "successfully_settled"
	case Failed:
		return "failed"
	case Terminated:
		return "terminated"
	case Expired:
		return "expired"
	default:
		return "unknown"
	}
}

type Project struct {
	Index     uint32
	Asset     codec.Address
	Initiator codec.Address

	ProjectName string
	TokenSymbol string
	Description string

	ExchangeAsset    codec.Address
	TotalIssuance    uint64
	TotalCirculation uint64
	AmountOffered    uint64
	ExchangeTarget   uint64
	MinPerUser       uint64
	MaxPerUser       uint64

	Duration   uint64
	StartBlock uint64
	AskedBlock uint64

	TotalRaised uint64
	TotalUSDT   uint64
	TokensSold  uint64

	ReleasedPercent          uint8
	LockPercent              uint8
	UnlockPercentPerDuration uint8
	UnlockDuration           uint64

	ExcludedAreas []string

	PledgeBond   uint64
	ExchangeBond uint64

	Reward         uint64
	RewardComputed bool

	Members      uint32
	SettledBlock uint64
	Status       ProjectStatus
}

// Deadline is the last block at which the raise accepts contributions.
func (p *Project) Deadline() uint64 {
	d := p.StartBlock + p.Duration
	if d < p.StartBlock {
		return consts.MaxUint64
	}
	return d
}

// [icoProjectPrefix] + [index]
func ProjectKey(index uint32) []byte {
	return prefixKey(icoProjectPrefix, ProjectChunks, uint32Bytes(index))
}

// EscrowAccount holds the contributions made to project [index].
func EscrowAccount(index uint32) codec.Address {
	return codec.DeriveAddress(consts.ICOEscrowID, uint32Bytes(index))
}

func GetProject(ctx context.Context, im state.Immutable, index uint32) (*Project, bool, error) {
	v, exists, err := getValue(ctx, im, ProjectKey(index))
	if err != nil || !exists {
		return nil, false, err
	}
	p := codec.NewReader(v, len(v))
	pr := &Project{}
	pr.Index = p.UnpackUint32(false)
	p.UnpackAddress(&pr.Asset)
	p.UnpackAddress(&pr.Initiator)
	pr.ProjectName = p.UnpackString(false)
	pr.TokenSymbol = p.UnpackString(false)
	pr.Description = p.UnpackString(false)
	p.UnpackAddress(&pr.ExchangeAsset)
	pr.TotalIssuance = p.UnpackUint64(false)
	pr.TotalCirculation = p.UnpackUint64(false)
	pr.AmountOffered = p.UnpackUint64(false)
	pr.ExchangeTarget = p.UnpackUint64(false)
	pr.MinPerUser = p.UnpackUint64(false)
	pr.MaxPerUser = p.UnpackUint64(false)
	pr.Duration = p.UnpackUint64(false)
	pr.StartBlock = p.UnpackUint64(false)
	pr.AskedBlock = p.UnpackUint64(false)
	pr.TotalRaised = p.UnpackUint64(false)
	pr.TotalUSDT = p.UnpackUint64(false)
	pr.TokensSold = p.UnpackUint64(false)
	pr.ReleasedPercent = p.UnpackByte()
	pr.LockPercent = p.UnpackByte()
	pr.UnlockPercentPerDuration = p.UnpackByte()
	pr.UnlockDuration = p.UnpackUint64(false)
	areas := int(p.UnpackByte())
	for i := 0; i < areas; i++ {
		pr.ExcludedAreas = append(pr.ExcludedAreas, p.UnpackString(false))
	}
	pr.PledgeBond = p.UnpackUint64(false)
	pr.ExchangeBond = p.UnpackUint64(false)
	pr.Reward = p.UnpackUint64(false)
	pr.RewardComputed = p.UnpackBool()
	pr.Members = p.UnpackUint32(false)
	pr.SettledBlock = p.UnpackUint64(false)
	pr.Status = ProjectStatus(p.UnpackByte())
	if err := p.Done(); err != nil {
		return nil, false, err
	}
	return pr, true, nil
}

func SetProject(ctx context.Context, mu state.Mutable, pr *Project) error {
	if len(pr.ExcludedAreas) > MaxExcludedAreas {
		return ErrTooManyAreas
	}
	size := consts.Uint32Len + 3*codec.AddressLen +
		3*consts.Uint16Len + len(pr.ProjectName) + len(pr.TokenSymbol) + len(pr.Description) +
		17*consts.Uint64Len + 6*consts.ByteLen + consts.Uint32Len
	for _, a := range pr.ExcludedAreas {
		size += consts.Uint16Len + len(a)
	}
	p := codec.NewWriter(size, size)
	p.PackUint32(pr.Index)
	p.PackAddress(pr.Asset)
	p.PackAddress(pr.Initiator)
	p.PackString(pr.ProjectName)
	p.PackString(pr.TokenSymbol)
	p.PackString(pr.Description)
	p.PackAddress(pr.ExchangeAsset)
	p.PackUint64(pr.TotalIssuance)
	p.PackUint64(pr.TotalCirculation)
	p.PackUint64(pr.AmountOffered)
	p.PackUint64(pr.ExchangeTarget)
	p.PackUint64(pr.MinPerUser)
	p.PackUint64(pr.MaxPerUser)
	p.PackUint64(pr.Duration)
	p.PackUint64(pr.StartBlock)
	p.PackUint64(pr.AskedBlock)
	p.PackUint64(pr.TotalRaised)
	p.PackUint64(pr.TotalUSDT)
	p.PackUint64(pr.TokensSold)
	p.PackByte(pr.ReleasedPercent)
	p.PackByte(pr.LockPercent)
	p.PackByte(pr.UnlockPercentPerDuration)
	p.PackUint64(pr.UnlockDuration)
	p.PackByte(byte(len(pr.ExcludedAreas)))
	for _, a := range pr.ExcludedAreas {
		p.PackString(a)
	}
	p.PackUint64(pr.PledgeBond)
	p.PackUint64(pr.ExchangeBond)
	p.PackUint64(pr.Reward)
	p.PackBool(pr.RewardComputed)
	p.PackUint32(pr.Members)
	p.PackUint64(pr.SettledBlock)
	p.PackByte(byte(pr.Status))
	if err := p.Err(); err != nil {
		return err
	}
	return mu.Insert(ctx, ProjectKey(pr.Index), p.Bytes())
}

func NextProjectIndexKey() []byte {
	return prefixKey(icoNextIndexPrefix, Uint64Chunks)
}

// NextProjectIndex allocates a new project index.
func NextProjectIndex(ctx context.Context, mu state.Mutable) (uint32, error) {
	next, _, err := getUint64(ctx, mu, NextProjectIndexKey())
	if err != nil {
		return 0, err
	}
	if next >= uint64(consts.MaxUint32) {
		return 0, ErrIndexExhausted
	}
	return uint32(next), setUint64(ctx, mu, NextProjectIndexKey(), next+1)
}

// [icoPendingPrefix] + [asset]
func PendingProjectKey(asset codec.Address) []byte {
	return prefixKey(icoPendingPrefix, Uint64Chunks, asset[:])
}

// GetPendingProject returns the index of the pending ask for [asset].
func GetPendingProject(ctx context.Context, im state.Immutable, asset codec.Address) (uint32, bool, error) {
	v, exists, err := getUint64(ctx, im, PendingProjectKey(asset))
	if err != nil || !exists {
		return 0, false, err
	}
	return uint32(v - 1), true, nil
}

func SetPendingProject(ctx context.Context, mu state.Mutable, asset codec.Address, index uint32) error {
	return setUint64(ctx, mu, PendingProjectKey(asset), uint64(index)+1)
}

func DeletePendingProject(ctx context.Context, mu state.Mutable, asset codec.Address) error {
	return mu.Remove(ctx, PendingProjectKey(asset))
}

func ActiveProjectsKey() []byte {
	return prefixKey(icoActivePrefix, ListChunks)
}

// GetActiveProjects returns the pending asks and raises visited by the sweep.
func GetActiveProjects(ctx context.Context, im state.Immutable) ([]uint32, error) {
	return getUint32List(ctx, im, ActiveProjectsKey())
}

func AddActiveProject(ctx context.Context, mu state.Mutable, index uint32) error {
	active, err := GetActiveProjects(ctx, mu)
	if err != nil {
		return err
	}
	return setUint32List(ctx, mu, ActiveProjectsKey(), append(active, index))
}

func RemoveActiveProject(ctx context.Context, mu state.Mutable, index uint32) error {
	active, err := GetActiveProjects(ctx, mu)
	if err != nil {
		return err
	}
	return setUint32List(ctx, mu, ActiveProjectsKey(), removeUint32(active, index))
}

// [icoMembersPrefix] + [index]
func MembersKey(index uint32) []byte {
	return prefixKey(icoMembersPrefix, ListChunks, uint32Bytes(index))
}

// GetMembers returns the participants of [index] in join order.
func GetMembers(ctx context.Context, im state.Immutable, index uint32) ([]codec.Address, error) {
	return getAddressList(ctx, im, MembersKey(index))
}

func SetMembers(ctx context.Context, mu state.Mutable, index uint32, members []codec.Address) error {
	return setAddressList(ctx, mu, MembersKey(index), members)
}

// Tag records a single contribution.
type Tag struct {
	ExchangeAmount uint64
	RunningTotal   uint64
	USDTAmount     uint64
	TargetAmount   uint64
}

type Participant struct {
	Contributed uint64
	USDT        uint64
	Entitlement uint64
	Tags        []Tag

	Released uint64
	Refunded uint64

	Reward        uint64
	HasReward     bool
	RewardClaimed bool

	Inviter    codec.Address
	HasInviter bool
}

// [icoParticipantPrefix] + [index] + [account]
func ParticipantKey(index uint32, account codec.Address) []byte {
	return prefixKey(icoParticipantPrefix, ParticipantChunks, uint32Bytes(index), account[:])
}

func GetParticipant(ctx context.Context, im state.Immutable, index uint32, account codec.Address) (*Participant, bool, error) {
	v, exists, err := getValue(ctx, im, ParticipantKey(index, account))
	if err != nil || !exists {
		return nil, false, err
	}
	p := codec.NewReader(v, len(v))
	pt := &Participant{}
	pt.Contributed = p.UnpackUint64(false)
	pt.USDT = p.UnpackUint64(false)
	pt.Entitlement = p.UnpackUint64(false)
	count := int(p.UnpackUint32(false))
	if count > MaxContributionTags {
		return nil, false, ErrCorruptValue
	}
	pt.Tags = make([]Tag, count)
	for i := range pt.Tags {
		pt.Tags[i] = Tag{
			ExchangeAmount: p.UnpackUint64(false),
			RunningTotal:   p.UnpackUint64(false),
			USDTAmount:     p.UnpackUint64(false),
			TargetAmount:   p.UnpackUint64(false),
		}
	}
	pt.Released = p.UnpackUint64(false)
	pt.Refunded = p.UnpackUint64(false)
	pt.Reward = p.UnpackUint64(false)
	pt.HasReward = p.UnpackBool()
	pt.RewardClaimed = p.UnpackBool()
	pt.HasInviter = p.UnpackBool()
	if pt.HasInviter {
		p.UnpackAddress(&pt.Inviter)
	}
	if err := p.Done(); err != nil {
		return nil, false, err
	}
	return pt, true, nil
}

func SetParticipant(ctx context.Context, mu state.Mutable, index uint32, account codec.Address, pt *Participant) error {
	if len(pt.Tags) > MaxContributionTags {
		return ErrTooManyTags
	}
	size := 6*consts.Uint64Len + consts.Uint32Len + len(pt.Tags)*4*consts.Uint64Len + 3*consts.BoolLen + codec.AddressLen
	p := codec.NewWriter(size, size)
	p.PackUint64(pt.Contributed)
	p.PackUint64(pt.USDT)
	p.PackUint64(pt.Entitlement)
	p.PackUint32(uint32(len(pt.Tags)))
	for _, t := range pt.Tags {
		p.PackUint64(t.ExchangeAmount)
		p.PackUint64(t.RunningTotal)
		p.PackUint64(t.USDTAmount)
		p.PackUint64(t.TargetAmount)
	}
	p.PackUint64(pt.Released)
	p.PackUint64(pt.Refunded)
	p.PackUint64(pt.Reward)
	p.PackBool(pt.HasReward)
	p.PackBool(pt.RewardClaimed)
	p.PackBool(pt.HasInviter)
	if pt.HasInviter {
		p.PackAddress(pt.Inviter)
	}
	if err := p.Err(); err != nil {
		return err
	}
	return mu.Insert(ctx, ParticipantKey(index, account), p.Bytes())
}

func DeleteParticipant(ctx context.Context, mu state.Mutable, index uint32, account codec.Address) error {
	return mu.Remove(ctx, ParticipantKey(index, account))
}

// Vesting tracks the linear release of locked project tokens.
type Vesting struct {
	StartBlock     uint64
	Total          uint64
	Unlocked       uint64
	UnlockDuration uint64
	PerDuration    uint64
}

// [icoVestingPrefix] + [index] + [account]
func VestingKey(index uint32, account codec.Address) []byte {
	return prefixKey(icoVestingPrefix, VestingChunks, uint32Bytes(index), account[:])
}

func GetVesting(ctx context.Context, im state.Immutable, index uint32, account codec.Address) (*Vesting, bool, error) {
	v, exists, err := getValue(ctx, im, VestingKey(index, account))
	if err != nil || !exists {
		return nil, false, err
	}
	p := codec.NewReader(v, len(v))
	vs := &Vesting{
		StartBlock:     p.UnpackUint64(false),
		Total:          p.UnpackUint64(false),
		Unlocked:       p.UnpackUint64(false),
		UnlockDuration: p.UnpackUint64(false),
		PerDuration:    p.UnpackUint64(false),
	}
	if err := p.Done(); err != nil {
		return nil, false, err
	}
	return vs, true, nil
}

func SetVesting(ctx context.Context, mu state.Mutable, index uint32, account codec.Address, vs *Vesting) error {
	size := 5 * consts.Uint64Len
	p := codec.NewWriter(size, size)
	p.PackUint64(vs.StartBlock)
	p.PackUint64(vs.Total)
	p.PackUint64(vs.Unlocked)
	p.PackUint64(vs.UnlockDuration)
	p.PackUint64(vs.PerDuration)
	if err := p.Err(); err != nil {
		return err
	}
	return mu.Insert(ctx, VestingKey(index, account), p.Bytes())
}

func DeleteVesting(ctx context.Context, mu state.Mutable, index uint32, account codec.Address) error {
	return mu.Remove(ctx, VestingKey(index, account))
}

func SystemVolumeKey() []byte {
	return prefixKey(icoSystemVolumePrefix, Uint64Chunks)
}

// GetSystemVolume returns the cumulative USDT raised by every project.
func GetSystemVolume(ctx context.Context, im state.Immutable) (uint64, error) {
	v, _, err := getUint64(ctx, im, SystemVolumeKey())
	return v, err
}

func SetSystemVolume(ctx context.Context, mu state.Mutable, volume uint64) error {
	return setUint64(ctx, mu, SystemVolumeKey(), volume)
}

// [icoUserVolumePrefix] + [account]
func UserVolumeKey(account codec.Address) []byte {
	return prefixKey(icoUserVolumePrefix, Uint64Chunks, account[:])
}

// GetUserVolume returns the USDT an account contributed across every raise.
func GetUserVolume(ctx context.Context, im state.Immutable, account codec.Address) (uint64, error) {
	v, _, err := getUint64(ctx, im, UserVolumeKey(account))
	return v, err
}

func SetUserVolume(ctx context.Context, mu state.Mutable, account codec.Address, volume uint64) error {
	return setUint64(ctx, mu, UserVolumeKey(account), volume)
}

func GraduatedKey() []byte {
	return prefixKey(icoGraduatedPrefix, ListChunks)
}

// GetGraduated returns the assets of successfully raised projects.
func GetGraduated(ctx context.Context, im state.Immutable) ([]codec.Address, error) {
	return getAddressList(ctx, im, GraduatedKey())
}

func AddGraduated(ctx context.Context, mu state.Mutable, asset codec.Address) error {
	graduated, err := GetGraduated(ctx, mu)
	if err != nil {
		return err
	}
	for _, a := range graduated {
		if a == asset {
			return nil
		}
	}
	return setAddressList(ctx, mu, GraduatedKey(), append(graduated, asset))
}

// [oraclePricePrefix] + [asset] + [quote]
func PriceKey(asset codec.Address, quote codec.Address) []byte {
	return prefixKey(oraclePricePrefix, Uint64Chunks, asset[:], quote[:])
}

func GetPrice(ctx context.Context, im state.Immutable, asset codec.Address, quote codec.Address) (uint64, bool, error) {
	return getUint64(ctx, im, PriceKey(asset, quote))
}

func SetPrice(ctx context.Context, mu state.Mutable, asset codec.Address, quote codec.Address, price uint64) error {
	return setUint64(ctx, mu, PriceKey(asset, quote), price)
}

// [kycAreaPrefix] + [account]
func AreaKey(account codec.Address) []byte {
	return prefixKey(kycAreaPrefix, AreaChunks, account[:])
}

func GetUserArea(ctx context.Context, im state.Immutable, account codec.Address) (string, bool, error) {
	v, exists, err := getValue(ctx, im, AreaKey(account))
	if err != nil || !exists {
		return "", false, err
	}
	return string(v), true, nil
}

func SetUserArea(ctx context.Context, mu state.Mutable, account codec.Address, area string) error {
	if len(area) == 0 {
		return mu.Remove(ctx, AreaKey(account))
	}
	if len(area) > MaxAreaSize {
		return ErrAreaTooLong
	}
	return mu.Insert(ctx, AreaKey(account), []byte(area))
}
