package service

import (
	"testing"

	"github.com/flexprice/recurring/internal/api/dto"
	ierr "github.com/flexprice/recurring/internal/errors"
	"github.com/flexprice/recurring/internal/testutil"
	"github.com/flexprice/recurring/internal/types"
	"github.com/stretchr/testify/suite"
)

type LabelServiceSuite struct {
	testutil.BaseServiceTestSuite
	service LabelService
}

func TestLabelService(t *testing.T) {
	suite.Run(t, new(LabelServiceSuite))
}

func (s *LabelServiceSuite) SetupTest() {
	s.BaseServiceTestSuite.SetupTest()
	s.service = NewLabelService(newTestServiceParams(&s.BaseServiceTestSuite))
}

func (s *LabelServiceSuite) TestCreateLabel() {
	resp, err := s.service.CreateLabel(s.GetContext(), dto.CreateLabelRequest{
		Name:        "Acme Corp",
		Description: "annual contract",
	})
	s.Require().NoError(err)
	s.Contains(resp.Code, types.SHORT_ID_PREFIX_LABEL)
	s.Equal("annual contract", *resp.Description)

	got, err := s.service.GetLabel(s.GetContext(), resp.ID)
	s.NoError(err)
	s.Equal("Acme Corp", got.Name)

	_, err = s.service.CreateLabel(s.GetContext(), dto.CreateLabelRequest{})
	s.True(ierr.IsValidation(err))
}

func (s *LabelServiceSuite) TestListLabelsSortedByName() {
	for _, name := range []string{"Zeta", "Acme", "Globex"} {
		_, err := s.service.CreateLabel(s.GetContext(), dto.CreateLabelRequest{Name: name})
		s.Require().NoError(err)
	}

	resp, err := s.service.ListLabels(s.GetContext())
	s.Require().NoError(err)
	s.Require().Len(resp.Items, 3)
	s.Equal("Acme", resp.Items[0].Name)
	s.Equal("Zeta", resp.Items[2].Name)
}

func (s *LabelServiceSuite) TestMembership() {
	l, err := s.service.CreateLabel(s.GetContext(), dto.CreateLabelRequest{Name: "Acme"})
	s.Require().NoError(err)

	members, err := s.service.AddMembers(s.GetContext(), l.ID, dto.AddLabelMembersRequest{
		AccountIDs: []string{"acc_a", "acc_b", "acc_a"},
	})
	s.Require().NoError(err)
	s.Len(members.Items, 2)

	// adding an existing member is a no-op
	members, err = s.service.AddMembers(s.GetContext(), l.ID, dto.AddLabelMembersRequest{
		AccountIDs: []string{"acc_b", "acc_c"},
	})
	s.Require().NoError(err)
	s.Len(members.Items, 3)

	s.NoError(s.service.RemoveMember(s.GetContext(), l.ID, "acc_a"))
	err = s.service.RemoveMember(s.GetContext(), l.ID, "acc_a")
	s.True(ierr.IsNotFound(err))

	members, err = s.service.ListMembers(s.GetContext(), l.ID)
	s.Require().NoError(err)
	s.Len(members.Items, 2)
	s.Equal(testutil.DefaultOperatorID, members.Items[0].CreatedBy)
}

func (s *LabelServiceSuite) TestMembershipOfUnknownLabel() {
	_, err := s.service.AddMembers(s.GetContext(), "lbl_missing", dto.AddLabelMembersRequest{
		AccountIDs: []string{"acc_a"},
	})
	s.True(ierr.IsNotFound(err))

	_, err = s.service.ListMembers(s.GetContext(), "lbl_missing")
	s.True(ierr.IsNotFound(err))

	_, err = s.service.AddMembers(s.GetContext(), "lbl_missing", dto.AddLabelMembersRequest{})
	s.True(ierr.IsValidation(err))
}
