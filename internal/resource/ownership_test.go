package resource_test

import (
	"github.com/frahmantamala/identity-api/internal/auth"
	"github.com/frahmantamala/identity-api/internal/core/datamodel/identity"
	"github.com/frahmantamala/identity-api/internal/resource"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("OwnershipPolicy", func() {
	policy := resource.OwnershipPolicy{
		Required:                true,
		RolesRequiringOwnership: []string{identity.RoleGuest, identity.RoleSupplierEditor},
		OwnershipType:           identity.OwnershipTypeUser,
	}

	owned := func(owner string) *identity.User {
		return &identity.User{Ownerships: identity.Ownerships{{OwnerID: owner, OwnershipType: identity.OwnershipTypeUser}}}
	}

	It("does not duplicate an existing ownership", func() {
		rec := owned("u-1")
		policy.AddOwnerships(&auth.TokenPayload{UserID: "u-1"}, rec)
		Expect(rec.Ownerships).To(HaveLen(1))
	})

	It("adds nothing without a token", func() {
		rec := &identity.User{}
		policy.AddOwnerships(nil, rec)
		Expect(rec.Ownerships).To(BeEmpty())
	})

	It("only counts ownerships of the policy's type", func() {
		rec := &identity.User{Ownerships: identity.Ownerships{{OwnerID: "u-1", OwnershipType: identity.OwnershipTypeOrganization}}}
		Expect(policy.IsOwner(&auth.TokenPayload{UserID: "u-1"}, rec)).To(BeFalse())
	})

	DescribeTable("ModificationAllowed",
		func(roles []string, userID string, expected bool) {
			token := &auth.TokenPayload{UserID: userID, Roles: roles}
			Expect(policy.ModificationAllowed(token, owned("u-1"))).To(Equal(expected))
		},
		Entry("admin on someone else's record", []string{identity.RoleAdmin}, "u-9", true),
		Entry("guest owner", []string{identity.RoleGuest}, "u-1", true),
		Entry("guest non-owner", []string{identity.RoleGuest}, "u-9", false),
		Entry("admin who is also a guest must own", []string{identity.RoleAdmin, identity.RoleGuest}, "u-9", false),
		Entry("product editor is not restricted", []string{identity.RoleProductEditor}, "u-9", true),
	)

	It("allows everything when ownership is not required", func() {
		open := resource.OwnershipPolicy{}
		Expect(open.ModificationAllowed(nil, owned("u-1"))).To(BeTrue())
	})

	It("refuses a missing token when ownership is required", func() {
		Expect(policy.ModificationAllowed(nil, owned("u-1"))).To(BeFalse())
	})
})
