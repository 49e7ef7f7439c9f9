package password

// Passwords seen most frequently in credential dumps, plus common Indonesian
// picks. Matched lowercased and trimmed.
var commonPasswords = func() map[string]struct{} {
	list := []string{
		"password",
		"password1",
		"password123",
		"passw0rd",
		"12345678",
		"123456789",
		"1234567890",
		"87654321",
		"qwerty123",
		"qwertyuiop",
		"1q2w3e4r",
		"1qaz2wsx",
		"q1w2e3r4",
		"abcd1234",
		"abc12345",
		"a1b2c3d4",
		"iloveyou",
		"sunshine",
		"princess",
		"welcome1",
		"football",
		"baseball",
		"superman",
		"trustno1",
		"dragon123",
		"monkey123",
		"letmein1",
		"whatever",
		"jakarta123",
		"indonesia",
		"indonesia123",
		"bandung123",
		"surabaya",
		"sayangku",
		"cintaku1",
		"kamuaja1",
		"bismillah",
		"rahasia1",
		"katasandi",
		"sandi123",
		"admin123",
		"admin1234",
		"administrator",
		"root1234",
		"user1234",
		"guest123",
		"test1234",
		"demo1234",
		"changeme",
		"default1",
		"samsung1",
		"android1",
		"internet",
		"computer",
		"gamer123",
		"ganteng1",
		"cantik123",
	}
	m := make(map[string]struct{}, len(list))
	for _, p := range list {
		m[p] = struct{}{}
	}
	return m
}()
