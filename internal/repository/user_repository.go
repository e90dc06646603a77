package repository

import (
	"github.com/KodingCommunity/koding_backend/internal/models"

	"gorm.io/gorm"
)

// UserRepository ユーザーに関するデータベース操作を行うインターフェース
type UserRepository interface {
	Create(user *models.User) error
	FindByNickname(nickname string) (*models.User, error)
	FindByEmail(email string) (*models.User, error)
	FindByGithubIdentifier(identifier int64) (*models.User, error)
	FindAllByNicknames(nicknames []string) ([]models.User, error)
	Update(user *models.User) error
	PersistByEmail(user *models.User) error
	ExistsByEmail(email string) (bool, error)
	ExistsByNickname(nickname string) (bool, error)
	Follow(fromNickname, toNickname string) (bool, error)
	Unfollow(fromNickname, toNickname string) (bool, error)
	IsFollowing(fromNickname, toNickname string) (bool, error)
	FollowingNicknames(nickname string) ([]string, error)
	FollowerNicknames(nickname string) ([]string, error)
	RemoveFollowsOf(nickname string) error
}

// userRepository UserRepositoryの実装
type userRepository struct {
	base    *BaseRepository[models.User]
	follows *BaseRepository[models.UserFollow]
}

// NewUserRepository UserRepositoryを作成
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{
		base:    NewBaseRepository[models.User](db, "email"),
		follows: NewBaseRepository[models.UserFollow](db, "from_nickname", "to_nickname"),
	}
}

// Create 新しいユーザーを作成
func (r *userRepository) Create(user *models.User) error {
	return r.base.DB().Create(user).Error
}

// FindByNickname ニックネームでユーザーを検索。見つからない場合はnil
func (r *userRepository) FindByNickname(nickname string) (*models.User, error) {
	return r.base.FindOne(Eq("nickname", nickname))
}

// FindByEmail メールアドレスでユーザーを検索。見つからない場合はnil
func (r *userRepository) FindByEmail(email string) (*models.User, error) {
	return r.base.FindOne(Eq("email", email))
}

// FindByGithubIdentifier GitHub識別子でユーザーを検索。見つからない場合はnil
func (r *userRepository) FindByGithubIdentifier(identifier int64) (*models.User, error) {
	return r.base.FindOne(Eq("github_user_identifier", identifier))
}

// FindAllByNicknames 複数のニックネームを1回のinクエリでまとめて検索
func (r *userRepository) FindAllByNicknames(nicknames []string) ([]models.User, error) {
	return r.base.FindAll(FindOptions{}, In("nickname", nicknames))
}

// Update ユーザー情報を更新
func (r *userRepository) Update(user *models.User) error {
	return r.base.Update(user)
}

// PersistByEmail メールアドレスをキーにupsertする
func (r *userRepository) PersistByEmail(user *models.User) error {
	return r.base.Persist(user)
}

// ExistsByEmail メールアドレスが使用済みかどうか
func (r *userRepository) ExistsByEmail(email string) (bool, error) {
	count, err := r.base.Count(Eq("email", email))
	return count > 0, err
}

// ExistsByNickname ニックネームが使用済みかどうか
func (r *userRepository) ExistsByNickname(nickname string) (bool, error) {
	count, err := r.base.Count(Eq("nickname", nickname))
	return count > 0, err
}

// Follow フォロー関係を追加する。新規に成立した場合のみtrueを返す
func (r *userRepository) Follow(fromNickname, toNickname string) (bool, error) {
	return r.follows.PersistIfAbsent(&models.UserFollow{
		FromNickname: fromNickname,
		ToNickname:   toNickname,
	})
}

// Unfollow フォロー関係を解消する。実際に削除が起きた場合のみtrueを返す
func (r *userRepository) Unfollow(fromNickname, toNickname string) (bool, error) {
	return r.follows.Remove(&models.UserFollow{
		FromNickname: fromNickname,
		ToNickname:   toNickname,
	})
}

// IsFollowing フォロー中かどうか
func (r *userRepository) IsFollowing(fromNickname, toNickname string) (bool, error) {
	count, err := r.follows.Count(Eq("from_nickname", fromNickname), Eq("to_nickname", toNickname))
	return count > 0, err
}

// FollowingNicknames フォローしているニックネーム一覧を取得
func (r *userRepository) FollowingNicknames(nickname string) ([]string, error) {
	rows, err := r.follows.FindAll(FindOptions{SortBy: "created_at"}, Eq("from_nickname", nickname))
	if err != nil {
		return nil, err
	}
	nicknames := make([]string, 0, len(rows))
	for _, row := range rows {
		nicknames = append(nicknames, row.ToNickname)
	}
	return nicknames, nil
}

// FollowerNicknames フォローされているニックネーム一覧を取得
func (r *userRepository) FollowerNicknames(nickname string) ([]string, error) {
	rows, err := r.follows.FindAll(FindOptions{SortBy: "created_at"}, Eq("to_nickname", nickname))
	if err != nil {
		return nil, err
	}
	nicknames := make([]string, 0, len(rows))
	for _, row := range rows {
		nicknames = append(nicknames, row.FromNickname)
	}
	return nicknames, nil
}

// RemoveFollowsOf 退会したユーザーに関わるフォロー関係をすべて削除する
func (r *userRepository) RemoveFollowsOf(nickname string) error {
	return r.follows.DB().
		Where("from_nickname = ? OR to_nickname = ?", nickname, nickname).
		Delete(&models.UserFollow{}).Error
}
