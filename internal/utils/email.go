package utils

import (
	"regexp"
	"strings"
)

var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// IsValidEmail — синтаксическая проверка: local@domain.tld, TLD от 2 букв.
func IsValidEmail(email string) bool {
	return emailPattern.MatchString(email)
}

// EmailDomain — часть после последнего "@". Пустая строка, если адрес
// без домена; на мусорном вводе не падает.
func EmailDomain(email string) string {
	i := strings.LastIndex(email, "@")
	if i < 0 || i == len(email)-1 {
		return ""
	}
	return email[i+1:]
}
