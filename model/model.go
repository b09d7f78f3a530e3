package model

import (
	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

var snowflakeNode *snowflake.Node

var Models = []interface{}{
	&User{}, &Profile{}, &AuditEvent{},
}

// Named unique indexes so duplicate-key errors can be attributed to a field.
const (
	IdxUserEmail    = "idx_user_email"
	IdxUserUsername = "idx_user_username"
)

func init() {
	var err error
	snowflakeNode, err = snowflake.NewNode(1)
	if err != nil {
		panic(err)
	}
}

func GenerateID() uint {
	return uint(snowflakeNode.Generate())
}

func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(Models...)
}
