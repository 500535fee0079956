package profile

import "time"

// MobileVerification holds the pending code for a mobile number. ExpiresAt
// carries the issuance time of Code; both are removed once verified.
type MobileVerification struct {
	Code      string     `bson:"code,omitempty"`
	ExpiresAt *time.Time `bson:"expiresAt,omitempty"`
	Verified  bool       `bson:"verified"`
}

type Verification struct {
	Mobile MobileVerification `bson:"mobile"`
}

// UserProfile is stored in the "users" collection keyed by the caller's uid.
type UserProfile struct {
	UID            string       `bson:"_id"`
	Mobile         string       `bson:"mobile,omitempty"`
	MobileVerified bool         `bson:"mobileVerified"`
	Verification   Verification `bson:"verification"`
	CreatedAt      time.Time    `bson:"createdAt"`
	UpdatedAt      time.Time    `bson:"updatedAt"`
}

// Timestamp is the wire form of a point in time.
type Timestamp struct {
	Seconds     int64 `json:"seconds"`
	Nanoseconds int   `json:"nanoseconds"`
}

func TimestampOf(t time.Time) Timestamp {
	return Timestamp{Seconds: t.Unix(), Nanoseconds: t.Nanosecond()}
}

type MobileVerificationResponse struct {
	Verified  bool       `json:"verified"`
	ExpiresAt *Timestamp `json:"expiresAt,omitempty"`
}

type VerificationResponse struct {
	Mobile MobileVerificationResponse `json:"mobile"`
}

// Response is the profile as returned to its owner. The pending code is never
// included.
type Response struct {
	UID            string               `json:"uid"`
	Mobile         string               `json:"mobile,omitempty"`
	MobileVerified bool                 `json:"mobileVerified"`
	Verification   VerificationResponse `json:"verification"`
	CreatedAt      Timestamp            `json:"createdAt"`
	UpdatedAt      Timestamp            `json:"updatedAt"`
}

func (p *UserProfile) Response() Response {
	r := Response{
		UID:            p.UID,
		Mobile:         p.Mobile,
		MobileVerified: p.MobileVerified,
		CreatedAt:      TimestampOf(p.CreatedAt),
		UpdatedAt:      TimestampOf(p.UpdatedAt),
	}
	r.Verification.Mobile.Verified = p.Verification.Mobile.Verified
	if p.Verification.Mobile.ExpiresAt != nil {
		ts := TimestampOf(*p.Verification.Mobile.ExpiresAt)
		r.Verification.Mobile.ExpiresAt = &ts
	}
	return r
}
