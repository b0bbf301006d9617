package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUser_OwnsPost(t *testing.T) {
	u := &User{Posts: []string{"p1", "p2"}}

	assert.True(t, u.OwnsPost("p2"))
	assert.False(t, u.OwnsPost("p3"))
	assert.False(t, (&User{}).OwnsPost("p1"))
}

func TestPost_Likes(t *testing.T) {
	p := &Post{Likes: []string{"u1", "u2"}}

	assert.True(t, p.LikedBy("u1"))
	assert.False(t, p.LikedBy("u3"))
	assert.Equal(t, 2, p.LikeCount())
}
